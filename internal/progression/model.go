package progression

import "gorm.io/gorm"

// PointAward 是一次积分授予的持久化记录。
// (user_id, reason_key) 上的唯一索引是幂等性的最终防线：
// 同一事由对同一用户最多生效一次，并发重试由索引冲突吸收。
type PointAward struct {
	gorm.Model
	UserID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_award_user_reason"`
	ReasonKey string `gorm:"type:varchar(255);not null;uniqueIndex:idx_award_user_reason"`
	Amount    int    `gorm:"not null"`
}
