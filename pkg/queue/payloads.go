package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// UploadID 事件所属的上传.
	UploadID int64 `json:"upload_id,omitempty"`
	// TraceID 分布式追踪 ID，来自当前 span.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// UploadRef 标识一个上传.
type UploadRef struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	Extension string `json:"extension,omitempty"`
	Size      int64  `json:"size"`
}

// UploadCreatedPayload 上传已创建.
type UploadCreatedPayload struct {
	Upload    UploadRef `json:"upload"`
	Requester string    `json:"requester,omitempty"`
}

// UploadPublishedPayload 上传已公开.
type UploadPublishedPayload struct {
	Upload    UploadRef `json:"upload"`
	Checksum  string    `json:"checksum,omitempty"`
	PublicURL string    `json:"public_url"`
}

// UploadHiddenPayload 上传已隐藏.
type UploadHiddenPayload struct {
	Upload    UploadRef `json:"upload"`
	Requester string    `json:"requester,omitempty"`
}

// UploadSweptPayload 清理任务回收的上传.
type UploadSweptPayload struct {
	Upload       UploadRef `json:"upload"`
	CreationDate time.Time `json:"creation_date"`
}

// UploadMissingPayload 已公开但存储中找不到的上传.
type UploadMissingPayload struct {
	Upload UploadRef `json:"upload"`
}
