package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/configs"
	ctxPkg "github.com/yeisme/uploadvault/pkg/context"
	"github.com/yeisme/uploadvault/pkg/internal/types"
)

// identityHeaders oauth2-proxy 注入的身份请求头，按优先级排列.
var identityHeaders = []string{
	"X-Auth-Request-User",
	"X-Forwarded-User",
	"X-Auth-Request-Email",
	"X-Forwarded-Email",
}

// AuthMiddleware 基于 oauth2-proxy 注入的请求头识别请求方，并写入 request context.
//   - 跳过路径（如 /metrics, /api/health）允许匿名访问，带身份时仍会识别
//   - 开发模式可允许 query user 兜底（由 auth.dev_allow_query 控制）
//
// 未开启认证时只做识别，不拒绝匿名请求.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Requester(c, conf.DevAllowQuery)
		if user == "" && conf.Enabled && !isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
			return
		}

		if user != "" {
			c.Request = c.Request.WithContext(ctxPkg.WithRequester(c.Request.Context(), user))
		}

		c.Next()
	}
}

// Requester 从请求头（或开发模式下的 ?user=）取出请求方用户名.
func Requester(c *gin.Context, allowQuery bool) string {
	for _, h := range identityHeaders {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}

	if allowQuery {
		return strings.TrimSpace(c.Query("user"))
	}

	return ""
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
