package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/pkg/token"
)

// ContextKeyUserID 是经过认证的用户ID在gin.Context中的键。
const ContextKeyUserID = "userID"

// bearerToken 从Authorization头中提取Bearer令牌，没有则返回空串。
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth 是强制认证中间件。
// 令牌缺失或无效时直接以401中止请求。
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
			return
		}
		userID, err := token.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "认证令牌无效或已过期"})
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuth 是可选认证中间件。
// 带有效令牌的请求会得到用户身份，匿名请求原样放行。
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" {
			if userID, err := token.Verify(raw); err == nil {
				c.Set(ContextKeyUserID, userID)
			}
		}
		c.Next()
	}
}

// CurrentUserID 读取中间件写入的用户ID，匿名请求返回空串。
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
