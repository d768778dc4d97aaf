package collection

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
)

// PrimeDB 确保合集相关表的结构是最新的。
func PrimeDB() error {
	logrus.Info("正在初始化Collection数据库结构...")
	if err := database.DB.AutoMigrate(&Collection{}, &Membership{}); err != nil {
		return fmt.Errorf("无法迁移Collection表结构: %w", err)
	}
	logrus.Info("Collection数据库结构初始化完成。")
	return nil
}
