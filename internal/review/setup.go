package review

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
)

// PrimeDB 确保评价表的结构是最新的。
func PrimeDB() error {
	logrus.Info("正在初始化Review数据库结构...")
	if err := database.DB.AutoMigrate(&Review{}); err != nil {
		return fmt.Errorf("无法迁移Review表结构: %w", err)
	}
	logrus.Info("Review数据库结构初始化完成。")
	return nil
}
