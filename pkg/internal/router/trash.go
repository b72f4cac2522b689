package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/internal/handle"
)

// RegisterTrashRoutes 注册回收站路由，单个文件的移入与恢复在 /files/:id 下.
func RegisterTrashRoutes(g *gin.RouterGroup, h *handle.Handler) {
	g.DELETE("/trash", h.EmptyTrash)
}
