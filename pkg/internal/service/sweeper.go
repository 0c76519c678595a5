package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/uploadvault/pkg/internal/ledger"
	"github.com/yeisme/uploadvault/pkg/internal/model"
	"github.com/yeisme/uploadvault/pkg/internal/storage/blob"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	nlog "github.com/yeisme/uploadvault/pkg/log"
	"github.com/yeisme/uploadvault/pkg/metrics"
	"github.com/yeisme/uploadvault/pkg/pagination"
	"github.com/yeisme/uploadvault/pkg/queue"
	"github.com/yeisme/uploadvault/pkg/tracing"
)

// JobOption 调整后台任务.
type JobOption func(*jobDeps)

type jobDeps struct {
	events *queue.Emitter
	logger zerolog.Logger
	now    func() time.Time
}

// WithJobEmitter 设置事件发布器.
func WithJobEmitter(e *queue.Emitter) JobOption {
	return func(d *jobDeps) { d.events = e }
}

// WithJobClock 替换时钟，测试用.
func WithJobClock(now func() time.Time) JobOption {
	return func(d *jobDeps) { d.now = now }
}

func newJobDeps(component string, opts []JobOption) jobDeps {
	d := jobDeps{logger: nlog.Component(component), now: time.Now}
	for _, opt := range opts {
		opt(&d)
	}

	return d
}

// Sweeper 回收长时间未完成或撤下中断的上传.
//
// 每页用一条 UPDATE 认领并标记为 Hiding，逐条移除文件，再把成功的记录批量置为 Hidden.
// 移除失败的记录释放认领并停留在 Hiding，下一轮继续处理. 可以与自身以及在线上传并发运行.
type Sweeper struct {
	ledger *ledger.Ledger
	blob   blob.Backend
	jobDeps
}

// NewSweeper 创建清理任务.
func NewSweeper(l *ledger.Ledger, b blob.Backend, opts ...JobOption) *Sweeper {
	return &Sweeper{ledger: l, blob: b, jobDeps: newJobDeps("sweeper", opts)}
}

// Run 执行一轮完整的清理. 单条记录失败不会中止本轮，只有分页或数据库错误会返回.
func (s *Sweeper) Run(ctx context.Context, pageSize uint64, maxAge time.Duration) (*types.SweepResult, error) {
	ctx, span := tracing.StartSpan(ctx, "sweeper.run", trace.WithAttributes(
		attribute.String("page_size", strconv.FormatUint(pageSize, 10)),
		attribute.String("max_age", maxAge.String()),
	))
	defer span.End()

	start := s.now()
	cutoff := start.Add(-maxAge)
	res := &types.SweepResult{}

	it := pagination.NewIterator(ctx, pageSize, func(ctx context.Context, p pagination.Params) (pagination.Page[model.Upload], error) {
		return s.ledger.ClaimStale(ctx, p, cutoff)
	})

	for it.Next() {
		res.Pages++

		if err := s.sweepPage(ctx, it.Page().Items, res); err != nil {
			span.RecordError(err)
			return s.done(res, start), err
		}
	}

	if err := it.Err(); err != nil {
		span.RecordError(err)
		return s.done(res, start), err
	}

	s.done(res, start)

	s.logger.Info().
		Int("pages", res.Pages).
		Int("claimed", res.Claimed).
		Int("hidden", res.Hidden).
		Int("failed", res.Failed).
		Dur("duration", res.Duration).
		Msg("sweep finished")

	return res, nil
}

func (s *Sweeper) sweepPage(ctx context.Context, items []model.Upload, res *types.SweepResult) error {
	if len(items) == 0 {
		return nil
	}

	res.Claimed += len(items)
	claimID := *items[0].ClaimID

	var (
		removed []int64
		failed  []int64
		byID    = make(map[int64]model.Upload, len(items))
	)

	for _, u := range items {
		byID[u.ID] = u

		if err := s.blob.Unpublish(ctx, refOf(&u)); err != nil {
			s.logger.Warn().Err(err).Int64("upload_id", u.ID).Msg("unpublish failed, left in hiding")

			failed = append(failed, u.ID)
			res.Errors = append(res.Errors, fmt.Sprintf("upload %d: %v", u.ID, err))

			continue
		}

		removed = append(removed, u.ID)
	}

	if err := s.ledger.ReleaseClaim(ctx, claimID, failed); err != nil {
		return err
	}

	res.Failed += len(failed)
	metrics.SweptUploads.WithLabelValues(metrics.ResultError).Add(float64(len(failed)))

	n, err := s.ledger.MarkHidden(ctx, claimID, removed)
	if err != nil {
		return err
	}

	res.Hidden += int(n)
	metrics.SweptUploads.WithLabelValues(metrics.ResultOK).Add(float64(n))

	for _, id := range removed {
		u := byID[id]
		s.events.UploadSwept(ctx, queue.UploadSweptPayload{Upload: uploadRef(&u), CreationDate: u.CreationDate})
	}

	return nil
}

func (s *Sweeper) done(res *types.SweepResult, start time.Time) *types.SweepResult {
	res.Duration = s.now().Sub(start)
	metrics.JobDuration.WithLabelValues("sweeper").Observe(res.Duration.Seconds())

	return res
}

// Reconciler 巡检已公开的上传，公开文件丢失时标记为 Missing.
type Reconciler struct {
	ledger *ledger.Ledger
	blob   blob.Backend
	jobDeps
}

// NewReconciler 创建巡检任务.
func NewReconciler(l *ledger.Ledger, b blob.Backend, opts ...JobOption) *Reconciler {
	return &Reconciler{ledger: l, blob: b, jobDeps: newJobDeps("reconciler", opts)}
}

// Run 执行一轮巡检.
func (r *Reconciler) Run(ctx context.Context, pageSize uint64) (*types.ReconcileResult, error) {
	ctx, span := tracing.StartSpan(ctx, "reconciler.run")
	defer span.End()

	start := r.now()
	res := &types.ReconcileResult{}

	it := pagination.NewIterator(ctx, pageSize, r.ledger.PublishedWindow)
	for it.Next() {
		for _, u := range it.Page().Items {
			r.check(ctx, u, res)
		}
	}

	res.Duration = r.now().Sub(start)
	metrics.JobDuration.WithLabelValues("reconciler").Observe(res.Duration.Seconds())

	if err := it.Err(); err != nil {
		span.RecordError(err)
		return res, err
	}

	r.logger.Info().
		Int("checked", res.Checked).
		Int("missing", res.Missing).
		Dur("duration", res.Duration).
		Msg("reconcile finished")

	return res, nil
}

func (r *Reconciler) check(ctx context.Context, u model.Upload, res *types.ReconcileResult) {
	res.Checked++

	ok, err := r.blob.Published(ctx, refOf(&u))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("upload %d: %v", u.ID, err))
		metrics.ReconciledUploads.WithLabelValues(metrics.ResultError).Inc()

		return
	}

	if ok {
		metrics.ReconciledUploads.WithLabelValues(metrics.ResultOK).Inc()
		return
	}

	moved, err := r.ledger.TrySetStatus(ctx, u.ID, model.StatusMissing)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("upload %d: %v", u.ID, err))
		return
	}

	if moved {
		res.Missing++
		metrics.ReconciledUploads.WithLabelValues("missing").Inc()
		r.logger.Warn().Int64("upload_id", u.ID).Msg("published file missing")
		r.events.UploadMissing(ctx, queue.UploadMissingPayload{Upload: uploadRef(&u)})
	}
}
