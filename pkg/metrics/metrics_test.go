package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

// TestRegisterMetricsRoute 测试启用时在配置路径暴露指标，未启用时不注册路由.
func TestRegisterMetricsRoute(t *testing.T) {
	cfg := configs.MetricsConfig{Enabled: true, Path: "/internal/metrics", Labels: map[string]string{"service": "test"}}
	if err := metrics.InitMetrics(cfg); err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}

	metrics.ObserveUpload("finalize", metrics.ResultOK)

	engine := gin.New()
	metrics.RegisterMetricsRoute(cfg, engine)

	w := get(engine, "/internal/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "upload_operations_total") {
		t.Errorf("GET /internal/metrics = %d: %.200s", w.Code, w.Body.String())
	}

	if w := get(engine, "/debug/pprof/"); w.Code != http.StatusNotFound {
		t.Errorf("pprof mounted without being enabled: %d", w.Code)
	}

	disabled := gin.New()
	metrics.RegisterMetricsRoute(configs.MetricsConfig{Path: "/metrics"}, disabled)

	if w := get(disabled, "/metrics"); w.Code != http.StatusNotFound {
		t.Errorf("disabled metrics route = %d, want 404", w.Code)
	}
}
