package note

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
)

// DefaultTrendingSize 是热门端点默认返回的条目数。
const DefaultTrendingSize = 12

// trendingHalfLife 是热度分数的半衰期。
const trendingHalfLife = 14 * 24 * time.Hour

// TrendingScore 计算一篇笔记的热度分数。
// 下载比浏览权重更高，分数随笔记年龄按半衰期指数衰减。
// 相同输入永远得到相同分数，重算是确定性的。
func TrendingScore(views, downloads int64, age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	raw := float64(3*downloads + views)
	decay := math.Exp2(-age.Hours() / trendingHalfLife.Hours())
	return raw * decay
}

// RebuildTrending 从SQLite权威数据和Redis增量重算整个热门排行。
// 由刷写调度器周期性调用，也在缓存预热时调用。
func RebuildTrending(now time.Time) error {
	var notes []Note
	if err := database.DB.Select("id", "views", "downloads", "created_at").Find(&notes).Error; err != nil {
		return fmt.Errorf("无法加载笔记计数: %w", err)
	}

	viewDeltas, downloadDeltas := loadDeltas()

	tempKey := TrendingKey + ":rebuild"
	pipe := database.RDB.TxPipeline()
	pipe.Del(database.Ctx, tempKey)
	if len(notes) > 0 {
		members := make([]redis.Z, 0, len(notes))
		for _, n := range notes {
			views := n.Views + viewDeltas[n.ID]
			downloads := n.Downloads + downloadDeltas[n.ID]
			score := TrendingScore(views, downloads, now.Sub(n.CreatedAt))
			members = append(members, redis.Z{Score: score, Member: n.ID})
		}
		pipe.ZAdd(database.Ctx, tempKey, members...)
		pipe.Rename(database.Ctx, tempKey, TrendingKey)
	} else {
		pipe.Del(database.Ctx, TrendingKey)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("无法重建热门排行: %w", err)
	}
	return nil
}

// Trending 返回热度最高的前limit篇笔记。
// 优先读取Redis排行，Redis不可用时降级为在SQLite数据上直接计算。
func Trending(limit int) ([]DTO, error) {
	if limit <= 0 {
		limit = DefaultTrendingSize
	}

	if database.IsRedisHealthy() {
		ids, err := database.RDB.ZRevRange(database.Ctx, TrendingKey, 0, int64(limit-1)).Result()
		if err == nil && len(ids) > 0 {
			dtos, err := dtosByIDOrdered(ids)
			if err != nil {
				return nil, err
			}
			return dtos, nil
		}
		if err != nil {
			logrus.Warnf("读取Redis热门排行失败，降级为SQLite计算: %v", err)
		}
	}
	return trendingFromSQLite(limit)
}

// trendingFromSQLite 是Redis不可用时的降级路径：
// 全量加载计数后在内存中打分排序。数据规模可控，正确性优先。
func trendingFromSQLite(limit int) ([]DTO, error) {
	var notes []Note
	if err := database.DB.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("无法加载笔记: %w", err)
	}
	now := time.Now()
	type scored struct {
		note  Note
		score float64
	}
	ranked := make([]scored, 0, len(notes))
	for _, n := range notes {
		ranked = append(ranked, scored{note: n, score: TrendingScore(n.Views, n.Downloads, now.Sub(n.CreatedAt))})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].note.ID < ranked[j].note.ID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	picked := make([]Note, 0, len(ranked))
	for _, r := range ranked {
		picked = append(picked, r.note)
	}
	return buildDTOs(picked)
}

// loadDeltas 读取两个增量暂存Hash，Redis不可用时返回空映射。
func loadDeltas() (map[string]int64, map[string]int64) {
	views := map[string]int64{}
	downloads := map[string]int64{}
	if !database.IsRedisHealthy() {
		return views, downloads
	}
	if raw, err := database.RDB.HGetAll(database.Ctx, ViewsDeltaKey).Result(); err == nil {
		for id, v := range raw {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				views[id] = n
			}
		}
	}
	if raw, err := database.RDB.HGetAll(database.Ctx, DownloadsDeltaKey).Result(); err == nil {
		for id, v := range raw {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				downloads[id] = n
			}
		}
	}
	return views, downloads
}
