package note

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
)

// CreateHandler 处理 POST /api/notes。
// 请求是multipart表单：元数据字段加上一个file文件域。
func CreateHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少笔记文件"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法读取上传的文件"})
		return
	}
	defer file.Close()

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	dto, err := Create(CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Subject:     c.PostForm("subject"),
		Topic:       c.PostForm("topic"),
		Tags:        tags,
		AuthorID:    user.CurrentUserID(c),
		FileName:    fileHeader.Filename,
		FileSize:    fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		File:        file,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": dto})
}

// ListHandler 处理 GET /api/notes。
func ListHandler(c *gin.Context) {
	dtos, err := List(0)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": dtos})
}

// TrendingHandler 处理 GET /api/notes/trending。
// 可选的limit查询参数控制返回条目数，非法值回落到默认值。
func TrendingHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	dtos, err := Trending(limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": dtos})
}

// SearchHandler 处理 GET /api/notes/search?q=...&subject=...。
func SearchHandler(c *gin.Context) {
	dtos, total, err := Search(c.Query("q"), c.Query("subject"), 0)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": dtos, "total": total})
}

// GetHandler 处理 GET /api/notes/:id，同时记录一次浏览。
func GetHandler(c *gin.Context) {
	dto, err := GetByID(c.Param("id"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": dto})
}

// DownloadHandler 处理 POST /api/notes/:id/download。
// 记录一次下载并返回限时的文件URL。
func DownloadHandler(c *gin.Context) {
	url, err := Download(c.Param("id"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fileUrl": url})
}

// AuthorProfileHandler 处理 GET /api/users/:id。
// 返回用户的公开资料和其全部上传，本人查看时附带邮箱。
func AuthorProfileHandler(c *gin.Context) {
	id := c.Param("id")
	target, err := user.GetByID(id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	dtos, err := ListByAuthor(id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	includeEmail := user.CurrentUserID(c) == id
	c.JSON(http.StatusOK, gin.H{"user": user.ProfileFor(target, includeEmail), "notes": dtos})
}
