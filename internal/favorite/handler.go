package favorite

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
)

// AddHandler 处理 POST /api/users/favorites/:noteId。
func AddHandler(c *gin.Context) {
	if err := Add(user.CurrentUserID(c), c.Param("noteId")); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已加入收藏"})
}

// RemoveHandler 处理 DELETE /api/users/favorites/:noteId。
func RemoveHandler(c *gin.Context) {
	if err := Remove(user.CurrentUserID(c), c.Param("noteId")); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已取消收藏"})
}

// ListHandler 处理 GET /api/users/favorites/list。
func ListHandler(c *gin.Context) {
	dtos, err := List(user.CurrentUserID(c))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": dtos})
}
