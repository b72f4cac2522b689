package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yeisme/clouddrive/pkg/configs"
)

func TestObserveFileOp(t *testing.T) {
	before := testutil.ToFloat64(FileOperations.WithLabelValues(OpPurge, ResultError))

	ObserveFileOp(OpPurge, errors.New("boom"))
	ObserveFileOp(OpPurge, nil)

	if got := testutil.ToFloat64(FileOperations.WithLabelValues(OpPurge, ResultError)); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}

func TestRegisterRoutesExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := configs.MetricsConfig{Enabled: true, Path: "/metrics"}
	if err := InitMetrics(cfg); err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}
	// 再次调用不应重复注册
	if err := InitMetrics(cfg); err != nil {
		t.Fatalf("second InitMetrics: %v", err)
	}

	OrphanedBlobs.Inc()

	engine := gin.New()
	RegisterRoutes(cfg, engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), "clouddrive_orphaned_blobs_total") {
		t.Error("orphaned blob counter missing from scrape output")
	}
}
