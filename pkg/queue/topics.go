// Package queue 定义上传生命周期事件的主题、负载与发布器.
package queue

// 主题命名规范：uv.<域>.<动作>，尽量稳定且向后兼容.

const (
	// TopicUploadCreated 上传记录已创建并分配了私有存储.
	TopicUploadCreated = "uv.upload.created"
	// TopicUploadPublished 上传已公开，可通过公开 URL 访问.
	TopicUploadPublished = "uv.upload.published"
	// TopicUploadHidden 上传已被隐藏（用户移除）.
	TopicUploadHidden = "uv.upload.hidden"
	// TopicUploadSwept 清理任务回收了过期的未完成上传.
	TopicUploadSwept = "uv.upload.swept"
	// TopicUploadMissing 巡检发现已公开的文件丢失.
	TopicUploadMissing = "uv.upload.missing"
)

// UploadTopics 返回全部上传主题，便于订阅方批量订阅.
func UploadTopics() []string {
	return []string{
		TopicUploadCreated,
		TopicUploadPublished,
		TopicUploadHidden,
		TopicUploadSwept,
		TopicUploadMissing,
	}
}
