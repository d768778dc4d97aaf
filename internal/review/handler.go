package review

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
)

type submitRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// SubmitHandler 处理 POST /api/reviews/:noteId。
func SubmitHandler(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}
	dto, err := Submit(c.Param("noteId"), user.CurrentUserID(c), req.Rating, req.Comment)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": dto})
}

// ListHandler 处理 GET /api/reviews/:noteId。
func ListHandler(c *gin.Context) {
	dtos, err := ListByNote(c.Param("noteId"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": dtos})
}
