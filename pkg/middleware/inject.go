package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/uploadvault/pkg/context"
	"github.com/yeisme/uploadvault/pkg/internal/storage"
	"github.com/yeisme/uploadvault/pkg/scheduler"
)

type schedulerKey struct{}

// StorageMiddleware 将存储管理器注入 request context，供健康检查读取.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxPkg.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}

// SchedulerMiddleware 将调度器注入 request context.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithScheduler(c.Request.Context(), sched))
		c.Next()
	}
}

// WithScheduler 将调度器写入 context.
func WithScheduler(ctx context.Context, sched *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, schedulerKey{}, sched)
}

// GetScheduler 从 context 中获取调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	if sched, ok := c.Request.Context().Value(schedulerKey{}).(*scheduler.Scheduler); ok {
		return sched
	}

	return nil
}
