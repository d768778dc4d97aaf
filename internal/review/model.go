package review

import (
	"time"

	"github.com/studyloot/studyloot-backend/internal/user"
	"gorm.io/gorm"
)

// Review 定义了评价在SQLite数据库中的持久化模型。
// (note_id, user_id) 上的唯一索引保证每个用户对每篇笔记最多一条评价，
// 重复提交走替换语义。
type Review struct {
	gorm.Model
	NoteID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_note_user"`
	UserID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_note_user"`
	Rating  int    `gorm:"not null"`
	Comment string `gorm:"type:text"`
}

// DTO 是评价的对外响应形态，内嵌评价者摘要。
type DTO struct {
	ID        uint         `json:"id"`
	NoteID    string       `json:"noteId"`
	User      user.Summary `json:"user"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	CreatedAt time.Time    `json:"createdAt"`
}
