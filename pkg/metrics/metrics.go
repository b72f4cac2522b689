// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、文件操作与运行时指标.
//
// Example:
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.FileOperations.WithLabelValues(metrics.OpUpload, metrics.ResultOK).Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/clouddrive/pkg/configs"
)

// 文件操作名.
const (
	OpUpload   = "upload"
	OpList     = "list"
	OpDownload = "download_link"
	OpStar     = "star"
	OpTrash    = "trash"
	OpPurge    = "purge"
)

// 操作结果.
const (
	ResultOK    = "ok"
	ResultError = "error"
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

	// ActiveConnections 处理中的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// FileOperations 文件服务操作计数.
	FileOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddrive_file_operations_total",
			Help: "File service operations by operation and result",
		},
		[]string{"op", "result"},
	)

	// UploadedBytes 成功上传的字节数.
	UploadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clouddrive_uploaded_bytes_total",
			Help: "Bytes accepted by successful uploads",
		},
	)

	// OrphanedBlobs 元数据写入失败后遗留的对象数.
	OrphanedBlobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clouddrive_orphaned_blobs_total",
			Help: "Blobs written without a metadata record",
		},
	)

	// LinkCache 下载链接缓存命中情况.
	LinkCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddrive_link_cache_total",
			Help: "Signed download link cache lookups",
		},
		[]string{"result"},
	)

	// registry Prometheus注册表.
	registry     = prometheus.NewRegistry()
	gatherers    = prometheus.Gatherers{registry}
	registerOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			FileOperations, UploadedBytes, OrphanedBlobs, LinkCache,
		} {
			if err = registry.Register(c); err != nil {
				return
			}
		}

		// 运行时收集器与 gorm 插件注册在默认注册表上
		if config.RuntimeMetrics || config.DBMetrics {
			gatherers = prometheus.Gatherers{registry, prometheus.DefaultGatherer}
		}
	})

	return err
}

// RegisterRoutes 在 engine 上暴露指标端点.
func RegisterRoutes(config configs.MetricsConfig, engine *gin.Engine) {
	if !config.Enabled {
		return
	}

	engine.GET(config.Path, gin.WrapH(Handler()))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}
}

// Handler 返回 Prometheus 抓取处理器.
func Handler() http.Handler {
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// ObserveFileOp 记录一次文件操作结果.
func ObserveFileOp(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}

	FileOperations.WithLabelValues(op, result).Inc()
}
