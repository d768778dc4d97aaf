package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue 从metadata表中读取指定键的值。键不存在时返回空字符串。
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 以原子upsert的方式写入指定键的值。
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- 专用Helper ---

// GetLastCounterFlushAt 读取计数器最近一次落盘时间。从未落盘时返回零值时间。
func GetLastCounterFlushAt(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastCounterFlushAtKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastCounterFlushAtKey, err)
	}
	return t, nil
}

// SetLastCounterFlushAt 写入计数器最近一次落盘时间。
func SetLastCounterFlushAt(db *gorm.DB, t time.Time) error {
	return SetValue(db, LastCounterFlushAtKey, t.Format(time.RFC3339))
}
