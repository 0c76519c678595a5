// Package app 组装并运行 HTTP 服务与定时任务.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/jobs"
	"github.com/yeisme/uploadvault/pkg/internal/router"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/internal/storage"
	"github.com/yeisme/uploadvault/pkg/log"
	"github.com/yeisme/uploadvault/pkg/metrics"
	"github.com/yeisme/uploadvault/pkg/scheduler"
	"github.com/yeisme/uploadvault/pkg/tracing"
)

// App 持有服务运行期间的全部组件.
type App struct {
	Engine    *gin.Engine
	Storage   *storage.Manager
	Services  *service.Set
	Scheduler *scheduler.Scheduler

	config *configs.AppConfig
	logger zerolog.Logger
}

// New 依次初始化追踪、监控、存储、服务与调度器. 失败时释放已创建的资源.
func New(ctx context.Context, config *configs.AppConfig) (*App, error) {
	if err := tracing.InitTracer(ctx, config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	services := service.NewSet(manager, config)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(ctx, sched, services, config); err != nil {
		_ = sched.Shutdown()
		_ = manager.Close()

		return nil, fmt.Errorf("register jobs: %w", err)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := router.New(router.Deps{
		Config:    config,
		Storage:   manager,
		Services:  services,
		Scheduler: sched,
	})

	return &App{
		Engine:    engine,
		Storage:   manager,
		Services:  services,
		Scheduler: sched,
		config:    config,
		logger:    log.Component("app"),
	}, nil
}

// Run 启动 HTTP 服务与调度器，ctx 取消后优雅退出并释放资源.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
		// 分片可能较大，只限制读取请求头，不限制请求体
		IdleTimeout: 2 * a.config.Server.GetTimeoutDuration(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	a.Scheduler.Start()

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.GetShutdownTimeout())
		defer cancel()

		a.logger.Info().Msg("Shutting down")

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			a.Scheduler.Shutdown(),
			a.Storage.Close(),
			tracing.ShutdownTracer(shutdownCtx),
		)
	})

	return g.Wait()
}
