package note

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/platform/metadata"
	"gorm.io/gorm"
)

// FlushCounters 把Redis中的计数增量合并到SQLite的权威落盘值。
// 取走增量和清空暂存在同一个事务管道中完成，之后任何SQLite失败
// 都会把增量补偿回Redis，保证计数至少一次落盘、绝不凭空丢失。
func FlushCounters() error {
	if !database.IsRedisHealthy() {
		return nil
	}

	pipe := database.RDB.TxPipeline()
	viewsCmd := pipe.HGetAll(database.Ctx, ViewsDeltaKey)
	downloadsCmd := pipe.HGetAll(database.Ctx, DownloadsDeltaKey)
	pipe.Del(database.Ctx, ViewsDeltaKey, DownloadsDeltaKey)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("无法取走计数增量: %w", err)
	}

	viewDeltas := parseDeltas(viewsCmd.Val())
	downloadDeltas := parseDeltas(downloadsCmd.Val())
	if len(viewDeltas) == 0 && len(downloadDeltas) == 0 {
		return nil
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for id, delta := range viewDeltas {
			if err := tx.Model(&Note{}).Where("id = ?", id).
				UpdateColumn("views", gorm.Expr("views + ?", delta)).Error; err != nil {
				return err
			}
		}
		for id, delta := range downloadDeltas {
			if err := tx.Model(&Note{}).Where("id = ?", id).
				UpdateColumn("downloads", gorm.Expr("downloads + ?", delta)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// 落盘失败，把增量补偿回Redis等待下一轮。
		restoreDeltas(viewDeltas, downloadDeltas)
		return fmt.Errorf("无法落盘计数增量: %w", err)
	}

	if err := metadata.SetLastCounterFlushAt(database.DB, time.Now()); err != nil {
		logrus.Warnf("无法记录计数落盘时间: %v", err)
	}
	logrus.Debugf("计数增量落盘完成 (浏览: %d项, 下载: %d项)。", len(viewDeltas), len(downloadDeltas))
	return nil
}

func parseDeltas(raw map[string]string) map[string]int64 {
	deltas := make(map[string]int64, len(raw))
	for id, v := range raw {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n != 0 {
			deltas[id] = n
		}
	}
	return deltas
}

// restoreDeltas 把已取走但未能落盘的增量累加回暂存Hash。
func restoreDeltas(viewDeltas, downloadDeltas map[string]int64) {
	pipe := database.RDB.TxPipeline()
	for id, delta := range viewDeltas {
		pipe.HIncrBy(database.Ctx, ViewsDeltaKey, id, delta)
	}
	for id, delta := range downloadDeltas {
		pipe.HIncrBy(database.Ctx, DownloadsDeltaKey, id, delta)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		logrus.Errorf("补偿计数增量失败，部分计数可能丢失: %v", err)
	}
}
