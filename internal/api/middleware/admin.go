package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/mihintamu/scholarai-server/internal/model"
	"github.com/mihintamu/scholarai-server/internal/pkg/response"
)

// AdminOnly 管理员权限中间件，必须在 Auth 之后使用。
// 授权以签发 Token 时的 users.role 为准。
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != model.RoleAdmin {
			response.PermissionError(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}
