package collection

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
)

type upsertRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// CreateHandler 处理 POST /api/collections。
func CreateHandler(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	dto, err := Create(user.CurrentUserID(c), req.Name, req.Description, req.IsPublic)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection": dto})
}

// MyCollectionsHandler 处理 GET /api/collections/my。
func MyCollectionsHandler(c *gin.Context) {
	dtos, err := ListByOwner(user.CurrentUserID(c))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": dtos})
}

// GetHandler 处理 GET /api/collections/:id。
func GetHandler(c *gin.Context) {
	dto, err := Get(c.Param("id"), user.CurrentUserID(c))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": dto})
}

// UpdateHandler 处理 PUT /api/collections/:id。
func UpdateHandler(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	dto, err := Update(c.Param("id"), user.CurrentUserID(c), req.Name, req.Description, req.IsPublic)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": dto})
}

// DeleteHandler 处理 DELETE /api/collections/:id。
func DeleteHandler(c *gin.Context) {
	if err := Delete(c.Param("id"), user.CurrentUserID(c)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "合集已删除"})
}

// AddNoteHandler 处理 POST /api/collections/:id/notes/:noteId。
func AddNoteHandler(c *gin.Context) {
	if err := AddNote(c.Param("id"), user.CurrentUserID(c), c.Param("noteId")); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "笔记已加入合集"})
}

// RemoveNoteHandler 处理 DELETE /api/collections/:id/notes/:noteId。
func RemoveNoteHandler(c *gin.Context) {
	if err := RemoveNote(c.Param("id"), user.CurrentUserID(c), c.Param("noteId")); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "笔记已移出合集"})
}
