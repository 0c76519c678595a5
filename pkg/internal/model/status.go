package model

// UploadStatus 上传记录的生命周期状态.
type UploadStatus string

const (
	StatusInitialized UploadStatus = "initialized" // 元数据已写入，尚未分配文件
	StatusAllocated   UploadStatus = "allocated"   // 私有文件已分配，可写入分片
	StatusWriting     UploadStatus = "writing"     // 正在写入某个分片
	StatusPublishing  UploadStatus = "publishing"  // 正在复制到公开目录
	StatusPublished   UploadStatus = "published"   // 已公开
	StatusHiding      UploadStatus = "hiding"      // 正在撤下公开文件
	StatusHidden      UploadStatus = "hidden"      // 已撤下（终态）
	StatusMissing     UploadStatus = "missing"     // 文件丢失（终态）
)

// AllStatuses 按生命周期顺序列出所有状态.
var AllStatuses = []UploadStatus{
	StatusInitialized,
	StatusAllocated,
	StatusWriting,
	StatusPublishing,
	StatusPublished,
	StatusHiding,
	StatusHidden,
	StatusMissing,
}

// incoming 记录每个目标状态允许的来源状态.
// Missing 可由任意状态进入，单独处理；Initialized 不可再次进入.
var incoming = map[UploadStatus]map[UploadStatus]bool{
	StatusAllocated:  {StatusInitialized: true, StatusWriting: true},
	StatusWriting:    {StatusAllocated: true},
	StatusPublishing: {StatusAllocated: true, StatusHidden: true},
	StatusPublished:  {StatusPublishing: true},
	StatusHiding:     {StatusPublished: true},
	StatusHidden:     {StatusHiding: true},
}

// Valid 判断是否为已知状态.
func (s UploadStatus) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}

	return false
}

// String 实现 fmt.Stringer.
func (s UploadStatus) String() string { return string(s) }

// Terminal 返回状态是否不再参与清理（已公开或终态）.
func (s UploadStatus) Terminal() bool {
	return s == StatusPublished || s == StatusHidden || s == StatusMissing
}

// CanTransitionTo 判断 current -> target 是否为合法迁移，纯函数.
func CanTransitionTo(current, target UploadStatus) bool {
	if target == StatusMissing {
		return current.Valid()
	}

	from, ok := incoming[target]
	if !ok {
		return false
	}

	return from[current]
}

// Reclaimable 返回清理任务能否认领该状态的记录（认领后进入 Hiding）.
// 这是清理任务专用的回收边，与 CanTransitionTo 描述的请求流程相互独立.
func Reclaimable(s UploadStatus) bool {
	return s.Valid() && !s.Terminal()
}

// ReclaimableStatuses 返回所有可被清理任务认领的状态.
func ReclaimableStatuses() []UploadStatus {
	out := make([]UploadStatus, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		if Reclaimable(s) {
			out = append(out, s)
		}
	}

	return out
}
