package review

import (
	"fmt"
	"sort"

	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"github.com/studyloot/studyloot-backend/pkg/keylock"
	"gorm.io/gorm"
)

// noteLocks 按笔记ID串行化评分聚合的重算。
// 同一篇笔记的并发提交逐个进入临界区，聚合列永远等于真实均值。
var noteLocks = keylock.NewRegistry()

// Submit 提交或替换一条评价，并在同一事务内重算笔记的评分聚合。
// 同一用户对同一笔记的再次提交覆盖旧评价，总评价数不变。
func Submit(noteID, userID string, rating int, comment string) (DTO, error) {
	if rating < 1 || rating > 5 {
		return DTO{}, apperr.InvalidArgument("评分必须在1到5之间")
	}
	if _, err := user.GetByID(userID); err != nil {
		return DTO{}, err
	}

	noteLocks.Lock(noteID)
	defer noteLocks.Unlock(noteID)

	var saved Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		exists, err := noteExistsTx(tx, noteID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("笔记不存在")
		}

		var existing Review
		err = tx.Where("note_id = ? AND user_id = ?", noteID, userID).First(&existing).Error
		switch {
		case err == nil:
			existing.Rating = rating
			existing.Comment = comment
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("无法更新评价记录: %w", err)
			}
			saved = existing
		case err == gorm.ErrRecordNotFound:
			saved = Review{NoteID: noteID, UserID: userID, Rating: rating, Comment: comment}
			if err := tx.Create(&saved).Error; err != nil {
				return fmt.Errorf("无法创建评价记录: %w", err)
			}
		default:
			return fmt.Errorf("无法查询既有评价: %w", err)
		}

		// 从头重算聚合，而不是增量修补，保证聚合列与评价表始终一致。
		var agg struct {
			Count int64
			Avg   float64
		}
		if err := tx.Model(&Review{}).Where("note_id = ?", noteID).
			Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as avg").
			Scan(&agg).Error; err != nil {
			return fmt.Errorf("无法重算评分聚合: %w", err)
		}
		return note.ApplyReviewAggregate(tx, noteID, agg.Avg, int(agg.Count))
	})
	if err != nil {
		return DTO{}, err
	}

	dtos, err := buildDTOs([]Review{saved})
	if err != nil {
		return DTO{}, err
	}
	return dtos[0], nil
}

// ListByNote 返回一篇笔记的全部评价，最新的在前。
func ListByNote(noteID string) ([]DTO, error) {
	exists, err := note.Exists(noteID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("笔记不存在")
	}

	var reviews []Review
	if err := database.DB.Where("note_id = ?", noteID).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("无法查询评价列表: %w", err)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID > reviews[j].ID })
	return buildDTOs(reviews)
}

func noteExistsTx(tx *gorm.DB, noteID string) (bool, error) {
	var count int64
	if err := tx.Table("notes").Where("id = ? AND deleted_at IS NULL", noteID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("无法检查笔记是否存在: %w", err)
	}
	return count > 0, nil
}

// buildDTOs 批量转换评价并内嵌评价者摘要。
func buildDTOs(reviews []Review) ([]DTO, error) {
	if len(reviews) == 0 {
		return []DTO{}, nil
	}
	userIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
	}
	users, err := user.SummariesByID(userIDs)
	if err != nil {
		return nil, err
	}
	dtos := make([]DTO, 0, len(reviews))
	for _, r := range reviews {
		dtos = append(dtos, DTO{
			ID:        r.ID,
			NoteID:    r.NoteID,
			User:      users[r.UserID],
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return dtos, nil
}
