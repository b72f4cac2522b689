package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/internal/handle"
)

// RegisterHealthRoutes 注册健康检查路由.
func RegisterHealthRoutes(g *gin.RouterGroup, h *handle.Handler) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("", h.Health)
		healthRoutes.GET("/ready", h.HealthReady)
		healthRoutes.GET("/:component", h.HealthComponent)
	}
}
