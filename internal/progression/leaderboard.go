package progression

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/user"
)

// DefaultLeaderboardSize 是排行榜端点默认返回的条目数。
const DefaultLeaderboardSize = 10

// TopUsers 返回积分最高的前limit名用户。
// 优先从Redis排行榜读取候选人，再用SQLite中的权威数据做最终排序；
// Redis不可用时整体降级为直接查询SQLite。
// 排序规则是确定性的：积分降序，再按注册时间升序，最后按ID升序。
func TopUsers(limit int) ([]user.Profile, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	var candidates []user.User
	if database.IsRedisHealthy() {
		// 多取一些候选人，避免缓存与数据库间的短暂偏差截断真正的前几名。
		ids, err := database.RDB.ZRevRange(database.Ctx, LeaderboardKey, 0, int64(limit*2-1)).Result()
		if err == nil && len(ids) > 0 {
			if err := database.DB.Where("id IN ?", ids).Find(&candidates).Error; err != nil {
				return nil, fmt.Errorf("无法加载排行榜候选用户: %w", err)
			}
		} else if err != nil {
			logrus.Warnf("读取Redis排行榜失败，降级为SQLite查询: %v", err)
		}
	}
	if len(candidates) < limit {
		// 候选不足说明ZSET落后于权威数据（如注册后尚未获得积分的用户），
		// 回退到直接查询，保证缓存健康与否不改变榜单内容。
		candidates = nil
		if err := database.DB.Order("points DESC, created_at ASC, id ASC").Limit(limit).Find(&candidates).Error; err != nil {
			return nil, fmt.Errorf("无法查询排行榜用户: %w", err)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Points != candidates[j].Points {
			return candidates[i].Points > candidates[j].Points
		}
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	profiles := make([]user.Profile, 0, len(candidates))
	for i := range candidates {
		profiles = append(profiles, user.ProfileFor(&candidates[i], false))
	}
	return profiles, nil
}
