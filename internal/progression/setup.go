package progression

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/user"
)

// PrimeDB 确保积分授予表的结构是最新的。
func PrimeDB() error {
	logrus.Info("正在初始化Progression数据库结构...")
	if err := database.DB.AutoMigrate(&PointAward{}); err != nil {
		return fmt.Errorf("无法迁移PointAward表结构: %w", err)
	}
	logrus.Info("Progression数据库结构初始化完成。")
	return nil
}

// WarmupCache 从SQLite权威数据重建排行榜和授予缓存。
// 先写入临时键再RENAME，保证读方看到的始终是完整的数据集。
func WarmupCache() error {
	logrus.Info("正在预热Progression缓存...")

	var users []user.User
	if err := database.DB.Select("id", "points").Find(&users).Error; err != nil {
		return fmt.Errorf("无法加载用户积分: %w", err)
	}
	var awards []PointAward
	if err := database.DB.Select("user_id", "reason_key").Find(&awards).Error; err != nil {
		return fmt.Errorf("无法加载积分授予记录: %w", err)
	}

	tempLeaderboard := LeaderboardKey + ":rebuild"
	tempReasons := AwardedReasonsKey + ":rebuild"

	pipe := database.RDB.TxPipeline()
	pipe.Del(database.Ctx, tempLeaderboard, tempReasons)
	if len(users) > 0 {
		members := make([]redis.Z, 0, len(users))
		for _, u := range users {
			members = append(members, redis.Z{Score: float64(u.Points), Member: u.ID})
		}
		pipe.ZAdd(database.Ctx, tempLeaderboard, members...)
		pipe.Rename(database.Ctx, tempLeaderboard, LeaderboardKey)
	} else {
		pipe.Del(database.Ctx, LeaderboardKey)
	}
	if len(awards) > 0 {
		members := make([]interface{}, 0, len(awards))
		for _, a := range awards {
			members = append(members, reasonMember(a.UserID, a.ReasonKey))
		}
		pipe.SAdd(database.Ctx, tempReasons, members...)
		pipe.Rename(database.Ctx, tempReasons, AwardedReasonsKey)
	} else {
		pipe.Del(database.Ctx, AwardedReasonsKey)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("无法重建Progression缓存: %w", err)
	}

	logrus.Infof("Progression缓存预热完成 (用户: %d, 授予记录: %d)。", len(users), len(awards))
	return nil
}
