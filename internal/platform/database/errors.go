package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyError 判断一个数据库错误是否由唯一约束冲突引起。
// 加分台账的exactly-once语义依赖这个判断：冲突意味着该加分已被记录。
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite驱动未被GORM翻译时的兜底
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}

// IsRetryableError 判断一个数据库错误是否值得短间隔重试。
// SQLite在并发写入时会返回busy/locked，这类错误通常稍后即可成功。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
