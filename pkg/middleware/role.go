package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/configs"
	ctxPkg "github.com/yeisme/uploadvault/pkg/context"
	"github.com/yeisme/uploadvault/pkg/internal/types"
)

const roleContextKey = "role"

// ParseRole 解析角色字符串，空值或未知值回退到 def.
func ParseRole(s string, def configs.Role) configs.Role {
	r := configs.Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case configs.RoleViewer, configs.RoleUploader, configs.RoleAdmin:
		return r
	default:
		return def
	}
}

// RoleMiddleware 解析角色请求头并注入到 gin.Context 和 request.Context.
func RoleMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	header := conf.RoleHeader
	if header == "" {
		header = "X-Role"
	}

	def := conf.DefaultRole
	if def == "" {
		def = configs.RoleViewer
	}

	return func(c *gin.Context) {
		r := ParseRole(c.GetHeader(header), def)
		c.Set(roleContextKey, r)
		c.Request = c.Request.WithContext(ctxPkg.WithRole(c.Request.Context(), r))
		c.Next()
	}
}

// GetRole 从 gin.Context 获取当前请求角色.
func GetRole(c *gin.Context) configs.Role {
	if v, ok := c.Get(roleContextKey); ok {
		if r, ok2 := v.(configs.Role); ok2 {
			return r
		}
	}

	return ctxPkg.GetRole(c.Request.Context())
}

// RequireMinRole 要求最小角色，不满足则返回 403.
func RequireMinRole(minRole configs.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRole(c).AtLeast(minRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, types.ErrorResponse{
				Error:   "forbidden",
				Message: "role " + string(minRole) + " required",
			})

			return
		}

		c.Next()
	}
}
