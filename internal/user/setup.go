package user

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
)

// PrimeDB 确保用户表的结构是最新的。
func PrimeDB() error {
	logrus.Info("正在初始化User数据库结构...")
	if err := database.DB.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移User表结构: %w", err)
	}
	logrus.Info("User数据库结构初始化完成。")
	return nil
}
