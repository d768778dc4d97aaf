package user

import (
	"time"

	"gorm.io/gorm"
)

// User 定义了用户在SQLite数据库中的持久化模型。
// Points是用户积分的权威记录，排行榜缓存以它为准重建。
type User struct {
	// ID 是用户的主键，注册时生成的UUID v7。
	ID string `gorm:"primarykey;type:varchar(36)"`

	// Name 是用户的展示名称。
	Name string `gorm:"type:varchar(100);not null"`

	// Email 是登录凭据，全局唯一。
	Email string `gorm:"type:varchar(255);uniqueIndex;not null"`

	// PasswordHash 是bcrypt哈希后的密码，绝不出现在任何响应中。
	PasswordHash string `gorm:"type:varchar(100);not null"`

	// Bio 是用户的个人简介，可为空。
	Bio string `gorm:"type:text"`

	// Points 是用户累计获得的积分总数。
	Points int `gorm:"not null;default:0"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Profile 是用户的对外展示形态，携带由积分派生的等级信息。
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Bio       string    `json:"bio"`
	Points    int       `json:"points"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary 是嵌入在笔记、评价等响应中的作者摘要。
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
