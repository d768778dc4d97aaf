package note

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/platform/storage"
	"github.com/studyloot/studyloot-backend/internal/progression"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"gorm.io/gorm"
)

// UploadPointReward 是每次成功上传授予作者的积分。
const UploadPointReward = 10

// defaultListSize 是笔记列表端点的默认页大小。
const defaultListSize = 50

// CreateInput 汇总一次上传所需的全部信息。
type CreateInput struct {
	Title       string
	Description string
	Subject     string
	Topic       string
	Tags        []string
	AuthorID    string
	FileName    string
	FileSize    int64
	ContentType string
	File        io.Reader
}

// Create 上传一篇新笔记：文件进对象存储，元数据进SQLite，
// 然后按 upload:<noteID> 事由给作者授予积分。
// 授予以笔记ID为幂等键，同一篇笔记永远只产生一次积分。
func Create(input CreateInput) (DTO, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Subject = strings.TrimSpace(input.Subject)
	if input.Title == "" || input.Subject == "" {
		return DTO{}, apperr.InvalidArgument("标题和学科均不能为空")
	}
	if input.File == nil || input.FileName == "" {
		return DTO{}, apperr.InvalidArgument("必须附带笔记文件")
	}
	if _, err := user.GetByID(input.AuthorID); err != nil {
		return DTO{}, err
	}

	newUUID, err := uuid.NewV7()
	if err != nil {
		return DTO{}, fmt.Errorf("无法生成UUID v7: %w", err)
	}
	noteID := newUUID.String()
	fileKey := fmt.Sprintf("notes/%s/%s", noteID, input.FileName)

	if _, err := storage.Put(database.Ctx, fileKey, input.File, input.FileSize, input.ContentType); err != nil {
		return DTO{}, fmt.Errorf("无法上传笔记文件: %w", err)
	}

	newNote := Note{
		ID:          noteID,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Subject:     input.Subject,
		Topic:       strings.TrimSpace(input.Topic),
		Tags:        joinTags(input.Tags),
		AuthorID:    input.AuthorID,
		FileKey:     fileKey,
		FileName:    input.FileName,
		FileSize:    input.FileSize,
		ContentType: input.ContentType,
	}
	// 笔记记录和上传积分在同一事务内提交，任何失败都不留下半成品。
	reasonKey := "upload:" + noteID
	var awardedPoints int
	var awardDuplicated bool
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newNote).Error; err != nil {
			return fmt.Errorf("无法创建笔记记录: %w", err)
		}
		var err error
		awardedPoints, awardDuplicated, err = progression.AwardInTx(tx, input.AuthorID, reasonKey, UploadPointReward)
		if err != nil {
			return fmt.Errorf("无法授予上传积分: %w", err)
		}
		return nil
	})
	if err != nil {
		// 元数据写入失败时清理已上传的对象，避免产生孤儿文件。
		_ = storage.Remove(database.Ctx, fileKey)
		return DTO{}, err
	}
	progression.SyncAwardCache(input.AuthorID, reasonKey, awardedPoints, awardDuplicated)

	dtos, err := buildDTOs([]Note{newNote})
	if err != nil {
		return DTO{}, err
	}
	return dtos[0], nil
}

// GetByID 返回单篇笔记的详情并记录一次浏览。
// 返回的计数已合并Redis中尚未落盘的增量；本次浏览经处理器异步生效。
func GetByID(id string) (DTO, error) {
	n, err := loadNote(id)
	if err != nil {
		return DTO{}, err
	}
	RecordView(id)

	dtos, err := buildDTOs([]Note{*n})
	if err != nil {
		return DTO{}, err
	}
	return dtos[0], nil
}

// Download 记录一次下载并签发限时的文件访问URL。
func Download(id string) (string, error) {
	n, err := loadNote(id)
	if err != nil {
		return "", err
	}
	RecordDownload(id)
	url, err := storage.PresignedURL(database.Ctx, n.FileKey)
	if err != nil {
		return "", fmt.Errorf("无法签发下载URL: %w", err)
	}
	return url, nil
}

// List 返回最新上传的笔记。
func List(limit int) ([]DTO, error) {
	if limit <= 0 {
		limit = defaultListSize
	}
	var notes []Note
	if err := database.DB.Order("created_at DESC, id DESC").Limit(limit).Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("无法查询笔记列表: %w", err)
	}
	return buildDTOs(notes)
}

// Search 按关键词和学科过滤笔记，返回结果和总命中数。
// 关键词对标题、描述和标签做大小写不敏感的子串匹配，学科做前缀匹配。
func Search(query, subject string, limit int) ([]DTO, int64, error) {
	if limit <= 0 {
		limit = defaultListSize
	}
	db := database.DB.Model(&Note{})
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern, pattern)
	}
	if s := strings.TrimSpace(subject); s != "" {
		db = db.Where("LOWER(subject) LIKE ?", strings.ToLower(s)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("无法统计搜索命中数: %w", err)
	}
	var notes []Note
	if err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&notes).Error; err != nil {
		return nil, 0, fmt.Errorf("无法执行笔记搜索: %w", err)
	}
	dtos, err := buildDTOs(notes)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// ListByAuthor 返回某个用户上传的全部笔记，按时间倒序。
func ListByAuthor(authorID string) ([]DTO, error) {
	var notes []Note
	if err := database.DB.Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("无法查询用户的笔记: %w", err)
	}
	return buildDTOs(notes)
}

// loadNote 按主键加载笔记，不存在时返回NotFound。
func loadNote(id string) (*Note, error) {
	var n Note
	if err := database.DB.First(&n, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("笔记不存在")
		}
		return nil, fmt.Errorf("无法查询笔记记录: %w", err)
	}
	return &n, nil
}

// Exists 报告笔记是否存在，供收藏和合集模块校验引用。
func Exists(id string) (bool, error) {
	var count int64
	if err := database.DB.Model(&Note{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("无法检查笔记是否存在: %w", err)
	}
	return count > 0, nil
}

// buildDTOs 把持久化模型批量转换为响应形态：
// 合并Redis计数增量、派生稀有度并内嵌作者摘要。
func buildDTOs(notes []Note) ([]DTO, error) {
	if len(notes) == 0 {
		return []DTO{}, nil
	}
	authorIDs := make([]string, 0, len(notes))
	for _, n := range notes {
		authorIDs = append(authorIDs, n.AuthorID)
	}
	authors, err := user.SummariesByID(authorIDs)
	if err != nil {
		return nil, err
	}
	viewDeltas, downloadDeltas := loadDeltas()

	dtos := make([]DTO, 0, len(notes))
	for _, n := range notes {
		views := n.Views + viewDeltas[n.ID]
		downloads := n.Downloads + downloadDeltas[n.ID]
		dtos = append(dtos, DTO{
			ID:            n.ID,
			Title:         n.Title,
			Description:   n.Description,
			Subject:       n.Subject,
			Topic:         n.Topic,
			Tags:          n.TagList(),
			Author:        authors[n.AuthorID],
			FileName:      n.FileName,
			FileSize:      n.FileSize,
			Views:         views,
			Downloads:     downloads,
			AverageRating: n.AverageRating,
			TotalReviews:  n.TotalReviews,
			Rarity:        RarityFor(n.AverageRating),
			CreatedAt:     n.CreatedAt,
		})
	}
	return dtos, nil
}

// DTOsByID 按给定顺序返回一组笔记，缺失的ID被跳过。
func DTOsByID(ids []string) ([]DTO, error) {
	return dtosByIDOrdered(ids)
}

func dtosByIDOrdered(ids []string) ([]DTO, error) {
	if len(ids) == 0 {
		return []DTO{}, nil
	}
	var notes []Note
	if err := database.DB.Where("id IN ?", ids).Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("无法批量查询笔记: %w", err)
	}
	dtos, err := buildDTOs(notes)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]DTO, len(dtos))
	for _, d := range dtos {
		byID[d.ID] = d
	}
	ordered := make([]DTO, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return ordered, nil
}

// ApplyReviewAggregate 在评价模块完成重算后更新笔记上的聚合列。
// 必须在持有该笔记的写锁时调用。
func ApplyReviewAggregate(tx *gorm.DB, noteID string, averageRating float64, totalReviews int) error {
	return tx.Model(&Note{}).Where("id = ?", noteID).Updates(map[string]interface{}{
		"average_rating": averageRating,
		"total_reviews":  totalReviews,
	}).Error
}
