package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册调度器管理路由.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	jobs := g.Group("/scheduler")
	{
		jobs.GET("/jobs", handle.SchedulerJobs)
		jobs.POST("/jobs/stop", handle.SchedulerStopJobs)
		jobs.POST("/jobs/:name/run", handle.SchedulerRunJob)
		jobs.DELETE("/jobs/:id", handle.SchedulerRemoveJob)
		jobs.GET("/queue/waiting", handle.SchedulerQueueWaiting)
	}
}
