package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/handle"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/middleware"
)

// RegisterUploadRoutes 注册上传与帖子查询路由. 修改类接口要求 uploader 角色.
func RegisterUploadRoutes(g *gin.RouterGroup, svc *service.Set) {
	h := handle.NewUploadHandler(svc.Uploads)
	uploader := middleware.RequireMinRole(configs.RoleUploader)

	uploads := g.Group("/uploads")
	{
		uploads.POST("/add", uploader, h.Create)

		byID := uploads.Group("/by-id/:id")
		{
			byID.GET("", h.Get)
			byID.PUT("/upload-by-chunk", uploader, h.WriteChunk)
			byID.POST("/finalize", uploader, h.Finalize)
			byID.POST("/remove", uploader, h.Remove)
		}
	}

	g.GET("/posts/by-id/:id/uploads", h.ListPostUploads)
}

// RegisterAdminRoutes 注册手动清理与巡检路由.
func RegisterAdminRoutes(g *gin.RouterGroup, svc *service.Set, cfg *configs.AppConfig) {
	h := handle.NewAdminHandler(svc, cfg.Sweeper, cfg.Reconciler)

	g.POST("/sweep", h.Sweep)
	g.POST("/reconcile", h.Reconcile)
}
