package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextUserIDKey = "__user_id"

// AuthRequired 校验 Bearer 访问令牌并注入当前用户 ID。
// 令牌必须仍在该用户的有效集合内（登出/改密后旧令牌立即失效）。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, "缺少访问令牌")
			c.Abort()
			return
		}

		userID, err := a.auth.ValidateAccess(strings.TrimSpace(token))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "访问令牌无效或已过期")
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// currentUserID 取出中间件注入的用户 ID，0 表示未认证
func currentUserID(c *gin.Context) uint {
	if v, exists := c.Get(contextUserIDKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
