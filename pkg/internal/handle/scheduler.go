package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeisme/uploadvault/pkg/internal/types"
	"github.com/yeisme/uploadvault/pkg/middleware"
	"github.com/yeisme/uploadvault/pkg/scheduler"
)

func getScheduler(c *gin.Context) (*scheduler.Scheduler, bool) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "unavailable", Message: "scheduler not running"})
		return nil, false
	}

	return sched, true
}

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary	定时任务列表
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	map[string][]scheduler.JobInfo
//	@Router		/api/admin/scheduler/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerRunJob 立即触发一次指定任务，不等待完成.
//
//	@Summary	立即运行任务
//	@Tags		管理
//	@Produce	json
//	@Param		name	path		string	true	"任务名称，例如 upload.sweeper"
//	@Success	202		{object}	map[string]string
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/admin/scheduler/jobs/{name}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	name := c.Param("name")
	if _, err := sched.GetJobInfoByName(name); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, types.ErrorResponse{Error: CodeNotFound, Message: err.Error()})
		return
	}

	if err := sched.RunJobNow(name); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered", "job": name})
}

// SchedulerStopJobs 停止所有任务.
//
//	@Summary	停止所有任务
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/admin/scheduler/jobs/stop [post]
func SchedulerStopJobs(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	if err := sched.StopJobs(); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 根据 id 删除任务.
//
//	@Summary	删除任务
//	@Tags		管理
//	@Produce	json
//	@Param		id	path		string	true	"任务 ID"
//	@Success	200	{object}	map[string]string
//	@Failure	400	{object}	types.ErrorResponse
//	@Router		/api/admin/scheduler/jobs/{id} [delete]
func SchedulerRemoveJob(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, types.InvalidInput("invalid_job_id"))
		return
	}

	if err := sched.RemoveJob(id); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回队列中等待的任务数.
//
//	@Summary	等待中的任务数
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	map[string]int
//	@Router		/api/admin/scheduler/queue/waiting [get]
func SchedulerQueueWaiting(c *gin.Context) {
	sched, ok := getScheduler(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"waiting": sched.JobsWaitingInQueue()})
}
