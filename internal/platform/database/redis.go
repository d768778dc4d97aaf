package database

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/config"
)

// RDB 是全局的Redis客户端实例，持有所有实时读模型：
// 计数增量Hash、热门排行与积分排行榜ZSET、授予去重Set。
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作。
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接。
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		panic("无法连接到Redis: " + err.Error())
	}

	logrus.Info("Redis 连接成功！")
}
