package progression

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
)

// TopUsersHandler 处理 GET /api/users/leaderboard/top。
// 可选的n查询参数控制返回条目数，非法值回落到默认值。
func TopUsersHandler(c *gin.Context) {
	limit := DefaultLeaderboardSize
	if raw := c.Query("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	profiles, err := TopUsers(limit)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": profiles})
}
