// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、上传流程与后台任务指标.
//
// Example:
//
//	import "github.com/yeisme/uploadvault/pkg/metrics"
//
//	err := metrics.InitMetrics(cfg.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.UploadOperations.WithLabelValues("finalize", metrics.ResultOK).Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/uploadvault/pkg/configs"
)

// 指标结果标签.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// UploadOperations 上传流程各操作的结果计数.
	UploadOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "upload_operations_total",
			Help:      "Upload operations by name and result",
		},
		[]string{"op", "result"},
	)

	// UploadBytes 成功写入的分片字节数.
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "upload_chunk_bytes_total",
			Help:      "Bytes written by successful chunk uploads",
		},
	)

	// SweptUploads 清理任务处理的记录数.
	SweptUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "sweeper_uploads_total",
			Help:      "Uploads processed by the sweeper",
		},
		[]string{"result"},
	)

	// ReconciledUploads 巡检任务检查的记录数.
	ReconciledUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "reconciler_uploads_total",
			Help:      "Published uploads checked by the reconciler",
		},
		[]string{"result"},
	)

	// JobDuration 后台任务单轮耗时.
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: configs.AppName,
			Name:      "job_duration_seconds",
			Help:      "Duration of one sweeper or reconciler pass",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只生效一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		reg := prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), registry)

		// 注册标准收集器
		if config.RuntimeMetrics {
			if err = reg.Register(collectors.NewGoCollector()); err != nil {
				return
			}

			if err = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
				return
			}
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			UploadOperations, UploadBytes, SweptUploads, ReconciledUploads, JobDuration,
		} {
			if err = reg.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// RegisterMetricsRoute 在引擎上挂载 /metrics 与可选的 pprof，未启用时不注册任何路由.
func RegisterMetricsRoute(config configs.MetricsConfig, engine *gin.Engine) {
	if !config.Enabled {
		return
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	engine.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}
}

// ObserveUpload 记录一次上传操作的结果.
func ObserveUpload(op, result string) {
	UploadOperations.WithLabelValues(op, result).Inc()
}
