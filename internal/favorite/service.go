package favorite

import (
	"fmt"

	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"github.com/studyloot/studyloot-backend/pkg/keylock"
)

// userLocks 按用户ID串行化收藏集的变更。
var userLocks = keylock.NewRegistry()

// Add 把一篇笔记加入用户的收藏，重复收藏是幂等的空操作。
func Add(userID, noteID string) error {
	userLocks.Lock(userID)
	defer userLocks.Unlock(userID)

	exists, err := note.Exists(noteID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("笔记不存在")
	}

	if err := database.DB.Create(&Favorite{UserID: userID, NoteID: noteID}).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("无法创建收藏记录: %w", err)
	}
	return nil
}

// Remove 把一篇笔记移出用户的收藏，移除未收藏的笔记同样是空操作。
func Remove(userID, noteID string) error {
	userLocks.Lock(userID)
	defer userLocks.Unlock(userID)

	// 物理删除收藏行，否则唯一索引会挡住之后的重新收藏。
	if err := database.DB.Unscoped().Where("user_id = ? AND note_id = ?", userID, noteID).
		Delete(&Favorite{}).Error; err != nil {
		return fmt.Errorf("无法删除收藏记录: %w", err)
	}
	return nil
}

// List 返回用户收藏的全部笔记，最近收藏的在前。
func List(userID string) ([]note.DTO, error) {
	var favorites []Favorite
	if err := database.DB.Where("user_id = ?", userID).
		Order("id DESC").Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("无法查询收藏列表: %w", err)
	}
	noteIDs := make([]string, 0, len(favorites))
	for _, f := range favorites {
		noteIDs = append(noteIDs, f.NoteID)
	}
	return note.DTOsByID(noteIDs)
}
