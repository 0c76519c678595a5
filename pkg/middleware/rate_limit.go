package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/uploadvault/pkg/configs"
	ctxPkg "github.com/yeisme/uploadvault/pkg/context"
	"github.com/yeisme/uploadvault/pkg/internal/types"
)

const (
	limiterIdleTTL      = 10 * time.Minute
	limiterSweepEvery   = time.Minute
	rateLimitedResponse = "rate limit exceeded, please try again later"
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet 按键保存限流器，闲置超过 limiterIdleTTL 的键在下次清理时移除.
type limiterSet struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	items     map[string]*keyedLimiter
	lastSweep time.Time
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > limiterSweepEvery {
		for k, l := range s.items {
			if now.Sub(l.lastSeen) > limiterIdleTTL {
				delete(s.items, k)
			}
		}

		s.lastSweep = now
	}

	l, ok := s.items[key]
	if !ok {
		l = &keyedLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.items[key] = l
	}

	l.lastSeen = now

	return l.limiter.AllowN(now, 1)
}

// RateLimitMiddleware 返回一个基于配置的限流中间件.
// Key 取值：global（全局）、ip（按客户端 IP）、user（按请求方，匿名回退到 IP）、header:Name（按请求头）.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "global" || keyMode == "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				abortRateLimited(c)
				return
			}

			c.Next()
		}
	}

	set := &limiterSet{rps: rate.Limit(cfg.RPS), burst: cfg.Burst, items: map[string]*keyedLimiter{}}

	return func(c *gin.Context) {
		if !set.allow(rateLimitKey(c, keyMode), time.Now()) {
			abortRateLimited(c)
			return
		}

		c.Next()
	}
}

func rateLimitKey(c *gin.Context, keyMode string) string {
	var key string

	switch {
	case strings.HasPrefix(keyMode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(keyMode, "header:"))
	case keyMode == "user":
		key = ctxPkg.GetRequester(c.Request.Context())
	}

	if key == "" {
		key = c.ClientIP()
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

func abortRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{Error: "rate_limited", Message: rateLimitedResponse})
}
