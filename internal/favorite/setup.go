package favorite

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
)

// PrimeDB 确保收藏表的结构是最新的。
func PrimeDB() error {
	logrus.Info("正在初始化Favorite数据库结构...")
	if err := database.DB.AutoMigrate(&Favorite{}); err != nil {
		return fmt.Errorf("无法迁移Favorite表结构: %w", err)
	}
	logrus.Info("Favorite数据库结构初始化完成。")
	return nil
}
