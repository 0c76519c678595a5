// Package router 组装 gin 引擎：全局中间件、上传接口、健康检查、管理接口与静态文件.
package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/internal/storage"
	"github.com/yeisme/uploadvault/pkg/metrics"
	"github.com/yeisme/uploadvault/pkg/middleware"
	"github.com/yeisme/uploadvault/pkg/scheduler"
)

// Deps 路由依赖，由 app 层初始化后注入. Scheduler 可以为空.
type Deps struct {
	Config    *configs.AppConfig
	Storage   *storage.Manager
	Services  *service.Set
	Scheduler *scheduler.Scheduler
}

// New 创建挂载全部路由的 gin 引擎.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(cfg.Server, cfg.Auth),
		middleware.StorageMiddleware(deps.Storage),
		middleware.SchedulerMiddleware(deps.Scheduler),
		middleware.AuthMiddleware(cfg.Auth),
		middleware.RoleMiddleware(cfg.Auth),
		middleware.RateLimitMiddleware(cfg.RateLimit),
		middleware.CircuitBreakerMiddleware(cfg.CircuitBreaker),
	)

	metrics.RegisterMetricsRoute(cfg.Metrics, engine)
	RegisterSwaggerRoute(engine, cfg.Server)
	RegisterMediaRoute(engine, cfg.Upload.Storage)

	api := engine.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression))

	RegisterHealthCheckRoute(api)
	RegisterUploadRoutes(api, deps.Services)

	admin := api.Group("/admin", middleware.RequireMinRole(configs.RoleAdmin))
	RegisterSchedulerRoutes(admin)
	RegisterAdminRoutes(admin, deps.Services, cfg)

	return engine
}

// RegisterMediaRoute 文件系统后端直接提供公开目录下的静态文件.
func RegisterMediaRoute(engine *gin.Engine, cfg configs.UploadStorageConfig) {
	if cfg.Type != configs.StorageFileSystem || cfg.PublicPath == "" {
		return
	}

	route := cfg.MediaRoute
	if route == "" {
		route = configs.DefaultMediaRoute
	}

	engine.Static(route, cfg.PublicPath)
}
