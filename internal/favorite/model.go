package favorite

import "gorm.io/gorm"

// Favorite 是用户收藏笔记的关联记录。
// (user_id, note_id) 上的唯一索引保证重复收藏退化为空操作。
type Favorite struct {
	gorm.Model
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_note"`
	NoteID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_note"`
}
