package jobs

// 任务名称常量，管理接口与命令行通过名称引用任务.
const (
	JobUploadSweeper    = "upload.sweeper"
	JobUploadReconciler = "upload.reconciler"
)
