package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/uploadvault/pkg/configs"
)

// Publisher 发布 watermill 消息，由 mq.Client 实现.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// Emitter 按配置开关发布上传事件. 发布失败只记录日志，不影响调用方.
// nil Emitter 可安全调用，不会发布任何事件.
type Emitter struct {
	pub    Publisher
	cfg    configs.EventsConfig
	logger zerolog.Logger
}

// NewEmitter 创建事件发布器.
func NewEmitter(pub Publisher, cfg configs.EventsConfig, logger zerolog.Logger) *Emitter {
	return &Emitter{pub: pub, cfg: cfg, logger: logger}
}

// UploadCreated 发布 uv.upload.created.
func (e *Emitter) UploadCreated(ctx context.Context, p UploadCreatedPayload) {
	if e.enabled(e.cfgUpload().Created) {
		emit(ctx, e, TopicUploadCreated, p.Upload.ID, p)
	}
}

// UploadPublished 发布 uv.upload.published.
func (e *Emitter) UploadPublished(ctx context.Context, p UploadPublishedPayload) {
	if e.enabled(e.cfgUpload().Published) {
		emit(ctx, e, TopicUploadPublished, p.Upload.ID, p)
	}
}

// UploadHidden 发布 uv.upload.hidden.
func (e *Emitter) UploadHidden(ctx context.Context, p UploadHiddenPayload) {
	if e.enabled(e.cfgUpload().Hidden) {
		emit(ctx, e, TopicUploadHidden, p.Upload.ID, p)
	}
}

// UploadSwept 发布 uv.upload.swept.
func (e *Emitter) UploadSwept(ctx context.Context, p UploadSweptPayload) {
	if e.enabled(e.cfgUpload().Swept) {
		emit(ctx, e, TopicUploadSwept, p.Upload.ID, p)
	}
}

// UploadMissing 发布 uv.upload.missing.
func (e *Emitter) UploadMissing(ctx context.Context, p UploadMissingPayload) {
	if e.enabled(e.cfgUpload().Missing) {
		emit(ctx, e, TopicUploadMissing, p.Upload.ID, p)
	}
}

func (e *Emitter) cfgUpload() configs.UploadEventsConfig {
	if e == nil {
		return configs.UploadEventsConfig{}
	}

	return e.cfg.Upload
}

func (e *Emitter) enabled(topic bool) bool {
	return e != nil && e.pub != nil && e.cfg.Enabled && topic
}

func emit[T any](ctx context.Context, e *Emitter, topic string, uploadID int64, payload T) {
	opts := []HeaderOption{WithProducer(configs.AppName), WithUploadID(uploadID)}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, WithTraceID(sc.TraceID().String()))
	}

	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		e.logger.Warn().Err(err).Str("topic", topic).Msg("encode event failed")
		return
	}

	if err := e.pub.Publish(ctx, topic, msg); err != nil {
		e.logger.Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

// ParseUploadPublished 将 Watermill 消息解析为强类型 Envelope.
func ParseUploadPublished(msg *message.Message) (Message[UploadPublishedPayload], error) {
	return ParseWatermillMessage[UploadPublishedPayload](msg)
}

// ParseUploadHidden 将 Watermill 消息解析为强类型 Envelope.
func ParseUploadHidden(msg *message.Message) (Message[UploadHiddenPayload], error) {
	return ParseWatermillMessage[UploadHiddenPayload](msg)
}
