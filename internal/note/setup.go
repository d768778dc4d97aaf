package note

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
)

// PrimeDB 确保笔记表的结构是最新的。
func PrimeDB() error {
	logrus.Info("正在初始化Note数据库结构...")
	if err := database.DB.AutoMigrate(&Note{}); err != nil {
		return fmt.Errorf("无法迁移Note表结构: %w", err)
	}
	logrus.Info("Note数据库结构初始化完成。")
	return nil
}

// WarmupCache 重建热门排行。
// Redis重启后增量暂存随之丢失，权威落盘值仍然完整，
// 这里只需基于落盘值重算热度即可恢复读模型。
func WarmupCache() error {
	logrus.Info("正在预热Note缓存...")
	if err := RebuildTrending(time.Now()); err != nil {
		return err
	}
	logrus.Info("Note缓存预热完成。")
	return nil
}
