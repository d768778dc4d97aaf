package progression

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"gorm.io/gorm"
)

// Award 为用户按指定事由授予积分，整个操作是恰好一次的。
// 重复的 (userID, reasonKey) 组合静默返回当前积分，不产生第二次累加。
// 负数金额被拒绝，零金额是合法的空操作。
func Award(userID, reasonKey string, amount int) (int, error) {
	if userID == "" || reasonKey == "" {
		return 0, apperr.InvalidArgument("用户ID和授予事由均不能为空")
	}
	if amount < 0 {
		return 0, apperr.InvalidArgument("积分授予金额不能为负数")
	}

	// 快路径：仅在Redis健康时查询授予缓存，未命中或出错都继续走数据库。
	if database.IsRedisHealthy() {
		isMember, err := database.RDB.SIsMember(database.Ctx, AwardedReasonsKey, reasonMember(userID, reasonKey)).Result()
		if err == nil && isMember {
			var current user.User
			if err := database.DB.Select("points").First(&current, "id = ?", userID).Error; err == nil {
				return current.Points, nil
			}
		}
	}

	var newPoints int
	var duplicated bool
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		newPoints, duplicated, err = AwardInTx(tx, userID, reasonKey, amount)
		return err
	})
	if err != nil {
		return 0, err
	}

	SyncAwardCache(userID, reasonKey, newPoints, duplicated)
	return newPoints, nil
}

// AwardInTx 在调用方提供的事务内完成一次授予，
// 供需要让授予与其他写入原子提交的调用方使用。
// 返回授予后的积分总数和该授予此前是否已生效；
// 事务提交后调用方应调用SyncAwardCache同步缓存。
func AwardInTx(tx *gorm.DB, userID, reasonKey string, amount int) (int, bool, error) {
	var target user.User
	if err := tx.First(&target, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, false, apperr.NotFound("用户不存在")
		}
		return 0, false, err
	}

	if err := tx.Create(&PointAward{UserID: userID, ReasonKey: reasonKey, Amount: amount}).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			// 授予已经生效过，保持当前积分不变。
			return target.Points, true, nil
		}
		return 0, false, fmt.Errorf("无法创建积分授予记录: %w", err)
	}

	if err := tx.Model(&user.User{}).Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", amount)).Error; err != nil {
		return 0, false, fmt.Errorf("无法累加用户积分: %w", err)
	}
	// 并发授予时事务开头读到的积分可能已过期，总数以更新后的行为准。
	if err := tx.Select("points").First(&target, "id = ?", userID).Error; err != nil {
		return 0, false, fmt.Errorf("无法读取更新后的积分: %w", err)
	}
	return target.Points, false, nil
}

// SyncAwardCache 尽力而为地把一次已提交的授予同步进Redis缓存。
// 失败只记录日志，下一次重建会补齐。
func SyncAwardCache(userID, reasonKey string, points int, duplicated bool) {
	if !database.IsRedisHealthy() {
		return
	}
	pipe := database.RDB.TxPipeline()
	pipe.SAdd(database.Ctx, AwardedReasonsKey, reasonMember(userID, reasonKey))
	if !duplicated {
		pipe.ZAdd(database.Ctx, LeaderboardKey, redis.Z{Score: float64(points), Member: userID})
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		logrus.Warnf("同步积分缓存失败 (user: %s): %v", userID, err)
	}
}
