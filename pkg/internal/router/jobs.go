package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/internal/handle"
)

// RegisterJobsRoutes 注册后台任务路由.
func RegisterJobsRoutes(g *gin.RouterGroup, h *handle.Handler) {
	g.GET("/jobs", h.Jobs)
	g.POST("/jobs/:name/run", h.RunJob)
}
