package startup

import (
	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/collection"
	"github.com/studyloot/studyloot-backend/internal/favorite"
	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/metadata"
	"github.com/studyloot/studyloot-backend/internal/progression"
	"github.com/studyloot/studyloot-backend/internal/review"
	"github.com/studyloot/studyloot-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口。
// 先迁移所有表结构，再从SQLite权威数据预热Redis读模型。
func InitializeApplication() error {
	logrus.Info("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeDB(); err != nil {
		return err
	}
	if err := progression.PrimeDB(); err != nil {
		return err
	}
	if err := note.PrimeDB(); err != nil {
		return err
	}
	if err := review.PrimeDB(); err != nil {
		return err
	}
	if err := collection.PrimeDB(); err != nil {
		return err
	}
	if err := favorite.PrimeDB(); err != nil {
		return err
	}

	if err := RebuildCache(); err != nil {
		return err
	}

	logrus.Info("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// 启动时和健康检查器检测到Redis重启后都会调用它。
func RebuildCache() error {
	logrus.Info("开始缓存热重建...")

	if err := progression.WarmupCache(); err != nil {
		return err
	}
	if err := note.WarmupCache(); err != nil {
		return err
	}

	logrus.Info("缓存热重建完成。")
	return nil
}
