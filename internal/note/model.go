package note

import (
	"strings"
	"time"

	"github.com/studyloot/studyloot-backend/internal/user"
	"gorm.io/gorm"
)

// Note 定义了笔记在SQLite数据库中的持久化模型。
// Views和Downloads是计数器的权威落盘值，实时增量暂存在Redis中，
// 由刷写调度器周期性合并回来。
type Note struct {
	// ID 是笔记的主键，上传时生成的UUID v7。
	ID string `gorm:"primarykey;type:varchar(36)"`

	Title       string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`

	// Subject 是学科分类，搜索时作为过滤条件。
	Subject string `gorm:"type:varchar(100);index;not null"`

	// Topic 是学科下的具体主题。
	Topic string `gorm:"type:varchar(200)"`

	// Tags 以逗号分隔存储，读写都经过规范化。
	Tags string `gorm:"type:text"`

	// AuthorID 指向上传者。
	AuthorID string `gorm:"type:varchar(36);index;not null"`

	// FileKey 是对象存储中的键，下载时据此签发临时URL。
	FileKey     string `gorm:"type:varchar(255);not null"`
	FileName    string `gorm:"type:varchar(255);not null"`
	FileSize    int64  `gorm:"not null"`
	ContentType string `gorm:"type:varchar(100)"`

	// 计数器与评分聚合
	Views         int64   `gorm:"not null;default:0"`
	Downloads     int64   `gorm:"not null;default:0"`
	AverageRating float64 `gorm:"not null;default:0"`
	TotalReviews  int     `gorm:"not null;default:0"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TagList 把逗号分隔的标签列拆成切片。
func (n *Note) TagList() []string {
	if n.Tags == "" {
		return []string{}
	}
	parts := strings.Split(n.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// joinTags 规范化并拼接标签列表，供写入路径使用。
func joinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, ",")
}

// DTO 是笔记的对外响应形态，内嵌作者摘要并携带派生的稀有度。
type DTO struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Subject       string       `json:"subject"`
	Topic         string       `json:"topic"`
	Tags          []string     `json:"tags"`
	Author        user.Summary `json:"author"`
	FileName      string       `json:"fileName"`
	FileSize      int64        `json:"fileSize"`
	Views         int64        `json:"views"`
	Downloads     int64        `json:"downloads"`
	AverageRating float64      `json:"averageRating"`
	TotalReviews  int          `json:"totalReviews"`
	Rarity        string       `json:"rarity"`
	CreatedAt     time.Time    `json:"createdAt"`
}
