package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件操作相关路由，uploadLimit 只作用于上传.
func RegisterFilesRoutes(g *gin.RouterGroup, h *handle.Handler, uploadLimit gin.HandlerFunc) {
	filesRoutes := g.Group("/files")
	{
		filesRoutes.GET("", h.ListFiles)
		filesRoutes.POST("", uploadLimit, h.UploadFile)

		singleGroup := filesRoutes.Group("/:id")
		{
			singleGroup.GET("", h.GetFile)
			singleGroup.DELETE("", h.PurgeFile)
			singleGroup.GET("/download", h.DownloadLink)
			singleGroup.POST("/star", h.Star)
			singleGroup.POST("/unstar", h.Unstar)
			singleGroup.POST("/trash", h.Trash)
			singleGroup.POST("/restore", h.Restore)
		}
	}
}
