// Package router 管理路由配置：组装中间件并把处理器绑定到路径.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/handle"
	nlog "github.com/yeisme/clouddrive/pkg/log"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/middleware"
)

// New 创建 gin 引擎，注册全局中间件、/api 路由与指标端点.
//
//	/api/health...   存活与依赖检查
//	/api/files...    文件上传、列表、下载链接、收藏、回收站、彻底删除
//	/api/trash       清空回收站
//	/api/stats       用量统计
//	/api/jobs...     后台任务
func New(cfg *configs.AppConfig, h *handle.Handler) *gin.Engine {
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(nlog.Logger()),
		middleware.PrometheusMiddleware(),
		middleware.CORSMiddleware(cfg.Server),
	)

	if cfg.Server.Gzip {
		engine.Use(middleware.GzipMiddleware(cfg.Metrics.Path))
	}

	metrics.RegisterRoutes(cfg.Metrics, engine)

	api := engine.Group("/api",
		middleware.AuthMiddleware(cfg.Auth),
		middleware.RateLimitMiddleware(cfg.RateLimit),
		middleware.CircuitBreakerMiddleware(cfg.CircuitBreaker),
	)

	RegisterHealthRoutes(api, h)
	RegisterFilesRoutes(api, h, middleware.UploadRateLimitMiddleware(cfg.RateLimit))
	RegisterTrashRoutes(api, h)
	RegisterStatsRoutes(api, h)
	RegisterJobsRoutes(api, h)

	return engine
}
