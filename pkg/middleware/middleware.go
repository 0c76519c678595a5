// Package middleware 提供 gin 中间件：身份、角色、请求 ID、访问日志、指标、追踪与限流熔断.
package middleware

import (
	crand "crypto/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid"

	ctxPkg "github.com/yeisme/uploadvault/pkg/context"
)

// HeaderRequestID 请求 ID 请求头，上游已设置时沿用.
const HeaderRequestID = "X-Request-ID"

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(crand.Reader, 0)
)

// NewRequestID 生成按时间排序的请求 ID.
func NewRequestID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// RequestIDMiddleware 为每个请求分配 ID，写入响应头与 request context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = NewRequestID()
		}

		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(ctxPkg.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
