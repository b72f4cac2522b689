package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/internal/handle"
)

// RegisterStatsRoutes 注册统计相关路由.
func RegisterStatsRoutes(g *gin.RouterGroup, h *handle.Handler) {
	g.GET("/stats", h.Stats)
}
