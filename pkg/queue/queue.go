// 事件信封 JSON 结构：
//
//	{
//	  "header": {
//	    "topic": "uv.upload.published",
//	    "upload_id": 1,
//	    "trace_id": "optional-trace-id",
//	    "producer": "uploadvault",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { "upload": { "id": 1, "post_id": 7, "size": 42 }, "public_url": "..." }
//	}
//
// 同一上传的事件共享 upload_id 元数据，订阅方可以据此去重或按上传分区.
//
//	ch, _ := client.Subscribe(ctx, queue.TopicUploadPublished)
//	for m := range ch {
//	    env, err := queue.ParseUploadPublished(m)
//	    ...
//	    m.Ack()
//	}
package queue

import (
	"fmt"
	"strconv"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PayloadVersionV1 当前负载版本.
const PayloadVersionV1 = "v1"

// 元数据键.
const (
	MetaTopic      = "topic"
	MetaUploadID   = "upload_id"
	MetaTraceID    = "trace_id"
	MetaProducer   = "producer"
	MetaOccurredAt = "occurred_at"
	MetaVersion    = "version"
)

// HeaderOption 调整事件头.
type HeaderOption func(*EventHeader)

// WithTraceID 设置 TraceID.
func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// WithUploadID 设置事件所属的上传.
func WithUploadID(id int64) HeaderOption { return func(h *EventHeader) { h.UploadID = id } }

func newHeader(topic string, opts []HeaderOption) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}

	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// metadata 返回写入 watermill 元数据的键值，空值省略.
func (h EventHeader) metadata() message.Metadata {
	md := message.Metadata{
		MetaTopic:      h.Topic,
		MetaOccurredAt: h.OccurredAt.Format(time.RFC3339Nano),
	}

	if h.UploadID != 0 {
		md[MetaUploadID] = strconv.FormatInt(h.UploadID, 10)
	}

	for k, v := range map[string]string{MetaTraceID: h.TraceID, MetaProducer: h.Producer, MetaVersion: h.Version} {
		if v != "" {
			md[k] = v
		}
	}

	return md
}

// NewWatermillMessage 把负载封装为带事件头的 watermill 消息.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	env := Message[T]{Header: newHeader(topic, opts), Payload: payload}

	data, err := sonic.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata = env.Header.metadata()

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	var env Message[T]
	if err := sonic.Unmarshal(msg.Payload, &env); err != nil {
		return env, fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}

	return env, nil
}
