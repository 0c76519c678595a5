// Package jobs 负责注册上传相关的定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/internal/service"
	"github.com/yeisme/uploadvault/pkg/log"
	"github.com/yeisme/uploadvault/pkg/scheduler"
)

// RegisterCronJobs 按配置注册任务：
//   - upload.sweeper 清理超过 max_age 仍未发布的上传
//   - upload.reconciler 巡检已发布文件是否仍然存在
func RegisterCronJobs(ctx context.Context, sched *scheduler.Scheduler, svc *service.Set, cfg *configs.AppConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if svc == nil {
		return errors.New("service set is nil")
	}

	if cfg.Sweeper.Enabled {
		if err := sched.AddCron(ctx, JobUploadSweeper, cfg.Sweeper.Cron, SweepJob(svc.Sweeper, cfg.Sweeper)); err != nil {
			return err
		}
	}

	if cfg.Reconciler.Enabled {
		if err := sched.AddCron(ctx, JobUploadReconciler, cfg.Reconciler.Cron, ReconcileJob(svc.Reconciler, cfg.Reconciler)); err != nil {
			return err
		}
	}

	return nil
}

// SweepJob 包装一次清理，单条记录的失败只记录日志，不算任务失败.
func SweepJob(s *service.Sweeper, cfg configs.SweeperConfig) scheduler.JobFunc {
	return func(ctx context.Context) error {
		l := log.Logger().With().Str("job", JobUploadSweeper).Logger()

		res, err := s.Run(ctx, cfg.PageSize, cfg.MaxAge)
		if err != nil {
			l.Error().Err(err).Msg("sweep aborted")
			return err
		}

		if res.Failed > 0 {
			l.Warn().Int("failed", res.Failed).Strs("errors", res.Errors).Msg("some uploads were not hidden")
		}

		return nil
	}
}

// ReconcileJob 包装一次巡检.
func ReconcileJob(r *service.Reconciler, cfg configs.ReconcilerConfig) scheduler.JobFunc {
	return func(ctx context.Context) error {
		l := log.Logger().With().Str("job", JobUploadReconciler).Logger()

		res, err := r.Run(ctx, cfg.PageSize)
		if err != nil {
			l.Error().Err(err).Msg("reconcile aborted")
			return err
		}

		if res.Missing > 0 {
			l.Warn().Int("missing", res.Missing).Msg("published files missing")
		}

		return nil
	}
}
