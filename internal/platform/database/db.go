package database

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是全局的GORM实例，持有SQLite持久化存储。
var DB *gorm.DB

// InitDB 初始化数据库连接。
func InitDB(cfg config.SqliteConfig) {
	var err error

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)

	DB, err = gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		logrus.WithError(err).Fatal("连接数据库失败")
	}

	logrus.Info("数据库连接成功！")
}
