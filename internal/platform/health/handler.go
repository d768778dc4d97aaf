package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/platform/metadata"
)

// StatusHandler 处理 GET /api/health。
// 汇报Redis可用性和计数器最近一次成功落盘的时间。
func StatusHandler(c *gin.Context) {
	redisHealthy := database.IsRedisHealthy()
	status := http.StatusOK
	if !redisHealthy {
		status = http.StatusServiceUnavailable
	}

	lastFlush := ""
	if t, err := metadata.GetLastCounterFlushAt(database.DB); err == nil && !t.IsZero() {
		lastFlush = t.Format("2006-01-02T15:04:05Z07:00")
	}

	c.JSON(status, gin.H{
		"redisHealthy":       redisHealthy,
		"lastCounterFlushAt": lastFlush,
	})
}
