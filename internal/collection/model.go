package collection

import (
	"time"

	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/user"
	"gorm.io/gorm"
)

// Collection 定义了笔记合集在SQLite数据库中的持久化模型。
type Collection struct {
	// ID 是合集的主键，创建时生成的UUID v7。
	ID string `gorm:"primarykey;type:varchar(36)"`

	OwnerID     string `gorm:"type:varchar(36);index;not null"`
	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`

	// IsPublic 为false时合集只对所有者可见。
	IsPublic bool `gorm:"not null;default:false"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Membership 是合集与笔记的关联记录。
// (collection_id, note_id) 上的唯一索引让重复添加自然退化为空操作。
type Membership struct {
	gorm.Model
	CollectionID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_collection_note"`
	NoteID       string `gorm:"type:varchar(36);not null;uniqueIndex:idx_collection_note"`
}

// DTO 是合集的对外响应形态，内嵌所有者摘要和已解析的笔记列表。
type DTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsPublic    bool         `json:"isPublic"`
	Owner       user.Summary `json:"owner"`
	Notes       []note.DTO   `json:"notes"`
	NoteCount   int          `json:"noteCount"`
	CreatedAt   time.Time    `json:"createdAt"`
}
