package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/uploadvault/pkg/context"
)

const healthTimeout = 2 * time.Second

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func respondHealth(c *gin.Context, component string, checker healthChecker, configured bool) {
	if !configured {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": component + " client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := checker.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/db [get]
func HealthDB(c *gin.Context) {
	client := ctxPkg.GetDBClient(c.Request.Context())
	respondHealth(c, "db", client, client != nil)
}

// HealthS3 对象存储健康检查，只在 s3 后端时可用.
//
//	@Summary	对象存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/s3 [get]
func HealthS3(c *gin.Context) {
	client := ctxPkg.GetS3Client(c.Request.Context())
	respondHealth(c, "s3", client, client != nil)
}

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/mq [get]
func HealthMQ(c *gin.Context) {
	client := ctxPkg.GetMQClient(c.Request.Context())
	respondHealth(c, "mq", client, client != nil)
}

// HealthKV 键值存储健康检查.
//
//	@Summary	键值存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/kv [get]
func HealthKV(c *gin.Context) {
	client := ctxPkg.GetKVClient(c.Request.Context())
	respondHealth(c, "kv", client, client != nil)
}
