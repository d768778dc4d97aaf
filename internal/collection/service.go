package collection

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"github.com/studyloot/studyloot-backend/pkg/keylock"
	"gorm.io/gorm"
)

// collectionLocks 按合集ID串行化成员变更和删除。
var collectionLocks = keylock.NewRegistry()

// Create 创建一个新合集。
func Create(ownerID, name, description string, isPublic bool) (DTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DTO{}, apperr.InvalidArgument("合集名称不能为空")
	}
	if _, err := user.GetByID(ownerID); err != nil {
		return DTO{}, err
	}

	newUUID, err := uuid.NewV7()
	if err != nil {
		return DTO{}, fmt.Errorf("无法生成UUID v7: %w", err)
	}
	created := Collection{
		ID:          newUUID.String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
	}
	if err := database.DB.Create(&created).Error; err != nil {
		return DTO{}, fmt.Errorf("无法创建合集记录: %w", err)
	}
	return buildDTO(&created)
}

// Get 返回单个合集及其已解析的笔记列表。
// 私有合集对非所有者表现为不存在，不泄露其存在性。
func Get(id, requesterID string) (DTO, error) {
	c, err := loadVisible(id, requesterID)
	if err != nil {
		return DTO{}, err
	}
	return buildDTO(c)
}

// ListByOwner 返回某个用户拥有的全部合集，最新创建的在前。
func ListByOwner(ownerID string) ([]DTO, error) {
	var collections []Collection
	if err := database.DB.Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("无法查询用户的合集: %w", err)
	}
	dtos := make([]DTO, 0, len(collections))
	for i := range collections {
		dto, err := buildDTO(&collections[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// Update 修改合集的名称、描述和可见性，仅所有者可操作。
func Update(id, requesterID, name, description string, isPublic bool) (DTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DTO{}, apperr.InvalidArgument("合集名称不能为空")
	}

	collectionLocks.Lock(id)
	defer collectionLocks.Unlock(id)

	c, err := loadOwned(id, requesterID)
	if err != nil {
		return DTO{}, err
	}
	c.Name = name
	c.Description = strings.TrimSpace(description)
	c.IsPublic = isPublic
	if err := database.DB.Save(c).Error; err != nil {
		return DTO{}, fmt.Errorf("无法更新合集记录: %w", err)
	}
	return buildDTO(c)
}

// Delete 删除合集及其全部成员关联，仅所有者可操作。
// 只删除关联记录，被收录的笔记本身不受影响。
func Delete(id, requesterID string) error {
	collectionLocks.Lock(id)
	defer collectionLocks.Unlock(id)

	c, err := loadOwned(id, requesterID)
	if err != nil {
		return err
	}
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("collection_id = ?", c.ID).Delete(&Membership{}).Error; err != nil {
			return fmt.Errorf("无法删除合集成员关联: %w", err)
		}
		if err := tx.Delete(c).Error; err != nil {
			return fmt.Errorf("无法删除合集记录: %w", err)
		}
		return nil
	})
}

// AddNote 把一篇笔记加入合集，仅所有者可操作。
// 重复添加是幂等的空操作。
func AddNote(id, requesterID, noteID string) error {
	collectionLocks.Lock(id)
	defer collectionLocks.Unlock(id)

	if _, err := loadOwned(id, requesterID); err != nil {
		return err
	}
	exists, err := note.Exists(noteID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("笔记不存在")
	}

	if err := database.DB.Create(&Membership{CollectionID: id, NoteID: noteID}).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("无法创建合集成员关联: %w", err)
	}
	return nil
}

// RemoveNote 把一篇笔记移出合集，仅所有者可操作。
// 移除不存在的关联同样是幂等的空操作。
func RemoveNote(id, requesterID, noteID string) error {
	collectionLocks.Lock(id)
	defer collectionLocks.Unlock(id)

	if _, err := loadOwned(id, requesterID); err != nil {
		return err
	}
	// 物理删除关联行，否则唯一索引会挡住之后的重新加入。
	if err := database.DB.Unscoped().Where("collection_id = ? AND note_id = ?", id, noteID).
		Delete(&Membership{}).Error; err != nil {
		return fmt.Errorf("无法删除合集成员关联: %w", err)
	}
	return nil
}

// loadVisible 加载对请求者可见的合集。
// 不存在和私有两种情况统一返回NotFound。
func loadVisible(id, requesterID string) (*Collection, error) {
	var c Collection
	if err := database.DB.First(&c, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("合集不存在")
		}
		return nil, fmt.Errorf("无法查询合集记录: %w", err)
	}
	if !c.IsPublic && c.OwnerID != requesterID {
		return nil, apperr.NotFound("合集不存在")
	}
	return &c, nil
}

// loadOwned 加载合集并校验所有权。
// 私有合集对非所有者仍然表现为不存在；公开合集的越权操作返回Forbidden。
func loadOwned(id, requesterID string) (*Collection, error) {
	var c Collection
	if err := database.DB.First(&c, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("合集不存在")
		}
		return nil, fmt.Errorf("无法查询合集记录: %w", err)
	}
	if c.OwnerID != requesterID {
		if !c.IsPublic {
			return nil, apperr.NotFound("合集不存在")
		}
		return nil, apperr.Forbidden("只有合集所有者可以执行此操作")
	}
	return &c, nil
}

// buildDTO 把持久化模型转换为响应形态：解析成员笔记并内嵌所有者摘要。
func buildDTO(c *Collection) (DTO, error) {
	var memberships []Membership
	if err := database.DB.Where("collection_id = ?", c.ID).
		Order("id ASC").Find(&memberships).Error; err != nil {
		return DTO{}, fmt.Errorf("无法查询合集成员: %w", err)
	}
	noteIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		noteIDs = append(noteIDs, m.NoteID)
	}
	notes, err := note.DTOsByID(noteIDs)
	if err != nil {
		return DTO{}, err
	}
	owners, err := user.SummariesByID([]string{c.OwnerID})
	if err != nil {
		return DTO{}, err
	}
	return DTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsPublic:    c.IsPublic,
		Owner:       owners[c.OwnerID],
		Notes:       notes,
		NoteCount:   len(notes),
		CreatedAt:   c.CreatedAt,
	}, nil
}
