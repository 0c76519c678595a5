package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/contentrange"
	"github.com/yeisme/uploadvault/pkg/internal/ledger"
	"github.com/yeisme/uploadvault/pkg/internal/model"
	"github.com/yeisme/uploadvault/pkg/internal/storage/blob"
	"github.com/yeisme/uploadvault/pkg/internal/types"
	nlog "github.com/yeisme/uploadvault/pkg/log"
	"github.com/yeisme/uploadvault/pkg/metrics"
	"github.com/yeisme/uploadvault/pkg/pagination"
	"github.com/yeisme/uploadvault/pkg/queue"
	"github.com/yeisme/uploadvault/pkg/rule"
	"github.com/yeisme/uploadvault/pkg/tracing"
)

// UploadService 分片上传流程：创建、写入分片、发布、撤下.
//
// 每一步先由账本检查并执行状态迁移，再做文件操作；文件操作失败时按流程回滚状态，
// 数据库记录与文件之间不做分布式事务.
type UploadService struct {
	ledger *ledger.Ledger
	blob   blob.Backend
	events *queue.Emitter
	cfg    configs.UploadConfig
	limits pagination.Limits
	logger zerolog.Logger
}

// UploadOption 调整上传服务.
type UploadOption func(*UploadService)

// WithEmitter 设置事件发布器.
func WithEmitter(e *queue.Emitter) UploadOption {
	return func(s *UploadService) { s.events = e }
}

// WithPagination 设置分页限制.
func WithPagination(cfg configs.PaginationConfig) UploadOption {
	return func(s *UploadService) {
		s.limits = pagination.Limits{MaxPageSize: cfg.MaxPageSize, DefaultPageSize: cfg.DefaultPageSize}
	}
}

// NewUploadService 创建上传服务.
func NewUploadService(l *ledger.Ledger, b blob.Backend, cfg configs.UploadConfig, opts ...UploadOption) *UploadService {
	s := &UploadService{
		ledger: l,
		blob:   b,
		cfg:    cfg,
		limits: pagination.Limits{MaxPageSize: configs.DefaultMaxPageSize, DefaultPageSize: configs.DefaultPageSize},
		logger: nlog.Component("upload"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create 校验请求、写入记录、预分配私有文件，然后进入 Allocated.
// 预分配失败时记录停留在 Initialized.
func (s *UploadService) Create(ctx context.Context, requester string, req types.CreateUploadRequest) (resp *types.CreateUploadResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "upload.create", trace.WithAttributes(attribute.Int64("post_id", req.PostID)))
	defer func() { s.finish(span, "create", err) }()

	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	u, err := s.ledger.Create(ctx, req.PostID, req.Extension, req.Size, requester)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("upload_id", u.ID))

	if err := s.blob.Allocate(ctx, refOf(u), u.Size); err != nil {
		return nil, err
	}

	ok, err := s.ledger.TrySetStatus(ctx, u.ID, model.StatusAllocated)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, types.Conflict(u.ID, model.StatusAllocated)
	}

	s.events.UploadCreated(ctx, queue.UploadCreatedPayload{Upload: uploadRef(u), Requester: requester})

	return &types.CreateUploadResponse{ID: u.ID}, nil
}

func (s *UploadService) validateCreate(req types.CreateUploadRequest) error {
	if req.PostID <= 0 {
		return types.InvalidInput("invalid_post_id")
	}

	if err := rule.ValidateVar(req.Extension, "omitempty,max=32,upload_ext"); err != nil {
		return types.InvalidInput("invalid_extension")
	}

	switch {
	case req.Size <= 0:
		return types.InvalidInput("size_is_zero")
	case req.Size > s.cfg.MaxFileSize:
		return types.InvalidInput("size_too_large")
	}

	return nil
}

// WriteChunk 把 body 写入 rng 描述的区间.
//
// 记录必须处于 Allocated，写入期间处于 Writing，结束后无论是否写满都回到 Allocated.
// 有界区间的完整长度必须等于声明的 size. 进入 Writing 之后的任何失败都会尝试回滚到 Allocated，
// 回滚失败返回 types.RevertError.
func (s *UploadService) WriteChunk(ctx context.Context, requester string, id int64, rng contentrange.Range, body io.Reader) (err error) {
	ctx, span := tracing.StartSpan(ctx, "upload.write_chunk", trace.WithAttributes(
		attribute.Int64("upload_id", id),
		attribute.String("content_range", rng.String()),
	))
	defer func() { s.finish(span, "write_chunk", err) }()

	rec, err := s.authorize(ctx, requester, id)
	if err != nil {
		return err
	}

	ok, err := s.ledger.TrySetStatus(ctx, id, model.StatusWriting)
	if err != nil {
		return err
	}

	if !ok {
		return types.Conflict(id, model.StatusWriting)
	}

	if rng.Bounded && rng.Total != uint64(rec.Size) {
		return s.revert(ctx, id, fmt.Errorf("%w: complete length %d, declared size %d",
			types.ErrInvalidContentRange, rng.Total, rec.Size))
	}

	if rng.Last >= uint64(rec.Size) {
		return s.revert(ctx, id, fmt.Errorf("%w: byte %d beyond declared size %d",
			types.ErrInvalidContentRange, rng.Last, rec.Size))
	}

	length := int64(rng.Length())

	n, err := s.blob.Write(ctx, refOf(&rec.Upload), io.LimitReader(body, length), int64(rng.First))
	if err != nil {
		return s.revert(ctx, id, err)
	}

	if n < length {
		return s.revert(ctx, id, types.InvalidInput("body_too_short"))
	}

	ok, err = s.ledger.TrySetStatus(ctx, id, model.StatusAllocated)
	if err != nil {
		return err
	}

	if !ok {
		return types.Conflict(id, model.StatusAllocated)
	}

	metrics.UploadBytes.Add(float64(n))

	return nil
}

// revert 把 Writing 回滚为 Allocated，返回原始错误或回滚错误.
func (s *UploadService) revert(ctx context.Context, id int64, cause error) error {
	ok, err := s.ledger.TrySetStatus(ctx, id, model.StatusAllocated)
	if err == nil && !ok {
		err = types.Conflict(id, model.StatusAllocated)
	}

	if err != nil {
		s.logger.Error().Err(err).AnErr("cause", cause).Int64("upload_id", id).Msg("revert to allocated failed")
		return &types.RevertError{ID: id, Cause: cause, Revert: err}
	}

	return cause
}

// Finalize 执行 Allocated -> Publishing，复制到公开位置，再进入 Published.
// 不检查分片是否写满；复制失败时记录停留在 Publishing，由清理任务回收.
func (s *UploadService) Finalize(ctx context.Context, requester string, id int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "upload.finalize", trace.WithAttributes(attribute.Int64("upload_id", id)))
	defer func() { s.finish(span, "finalize", err) }()

	if _, err := s.authorize(ctx, requester, id); err != nil {
		return err
	}

	prev, ok, err := s.ledger.TrySetStatusChecked(ctx, id, model.StatusPublishing)
	if err != nil {
		return err
	}

	if !ok {
		return types.Conflict(id, model.StatusPublishing)
	}

	ref := refOf(prev)

	info, err := s.blob.Publish(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Int64("upload_id", id).Msg("publish failed, upload left in publishing")
		return err
	}

	ok, err = s.ledger.CompletePublish(ctx, id, info.Checksum)
	if err != nil {
		return err
	}

	if !ok {
		return types.Conflict(id, model.StatusPublished)
	}

	s.events.UploadPublished(ctx, queue.UploadPublishedPayload{
		Upload:    uploadRef(prev),
		Checksum:  info.Checksum,
		PublicURL: s.blob.PublicURL(ref),
	})

	return nil
}

// Hide 执行 Published -> Hiding，移除公开与私有文件，再进入 Hidden.
func (s *UploadService) Hide(ctx context.Context, requester string, id int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "upload.hide", trace.WithAttributes(attribute.Int64("upload_id", id)))
	defer func() { s.finish(span, "hide", err) }()

	if _, err := s.authorize(ctx, requester, id); err != nil {
		return err
	}

	prev, ok, err := s.ledger.TrySetStatusChecked(ctx, id, model.StatusHiding)
	if err != nil {
		return err
	}

	if !ok {
		return types.Conflict(id, model.StatusHiding)
	}

	if err := s.blob.Unpublish(ctx, refOf(prev)); err != nil {
		return err
	}

	ok, err = s.ledger.TrySetStatus(ctx, id, model.StatusHidden)
	if err != nil {
		return err
	}

	if !ok {
		return types.Conflict(id, model.StatusHidden)
	}

	s.events.UploadHidden(ctx, queue.UploadHiddenPayload{Upload: uploadRef(prev), Requester: requester})

	return nil
}

// Info 返回上传详情. 未公开的上传只有作者可见.
func (s *UploadService) Info(ctx context.Context, requester string, id int64) (*types.UploadInfo, error) {
	rec, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.Status != model.StatusPublished && rec.Author != requester {
		return nil, fmt.Errorf("%w: upload %d", types.ErrAccessDenied, id)
	}

	info := s.toInfo(rec.Upload)

	return &info, nil
}

// ListPublished 分页列出帖子下已公开的上传.
func (s *UploadService) ListPublished(ctx context.Context, postID int64, params pagination.Params) (pagination.Page[types.UploadInfo], error) {
	params = params.WithDefaults(s.limits)
	if err := params.Check(s.limits); err != nil {
		return pagination.Page[types.UploadInfo]{}, err
	}

	if _, err := s.ledger.PostAuthor(ctx, postID); err != nil {
		return pagination.Page[types.UploadInfo]{}, err
	}

	page, err := s.ledger.ListPublished(ctx, postID, params)
	if err != nil {
		return pagination.Page[types.UploadInfo]{}, err
	}

	return pagination.Map(page, s.toInfo), nil
}

// authorize 读取记录并确认请求者是帖子作者.
func (s *UploadService) authorize(ctx context.Context, requester string, id int64) (*ledger.Record, error) {
	rec, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.Author != requester {
		return nil, fmt.Errorf("%w: upload %d belongs to another user", types.ErrAccessDenied, id)
	}

	return rec, nil
}

func (s *UploadService) toInfo(u model.Upload) types.UploadInfo {
	info := types.UploadInfo{
		ID:           u.ID,
		PostID:       u.PostID,
		Extension:    u.Extension,
		Size:         u.Size,
		Status:       u.Status,
		Checksum:     u.Checksum,
		CreationDate: u.CreationDate,
	}

	if u.Status == model.StatusPublished {
		info.PublicURL = s.blob.PublicURL(refOf(&u))
	}

	return info
}

func (s *UploadService) finish(span trace.Span, op string, err error) {
	defer span.End()

	switch {
	case err == nil:
		metrics.ObserveUpload(op, metrics.ResultOK)
		return
	case errors.Is(err, types.ErrStateConflict):
		metrics.ObserveUpload(op, metrics.ResultConflict)
	default:
		metrics.ObserveUpload(op, metrics.ResultError)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func refOf(u *model.Upload) blob.Ref {
	return blob.Ref{ID: u.ID, Extension: u.Extension}
}

func uploadRef(u *model.Upload) queue.UploadRef {
	return queue.UploadRef{ID: u.ID, PostID: u.PostID, Extension: u.Extension, Size: u.Size}
}
