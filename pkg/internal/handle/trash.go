package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EmptyTrash 彻底删除回收站中的全部文件，返回成功数与失败明细.
//
//	DELETE /api/trash
func (h *Handler) EmptyTrash(c *gin.Context) {
	report, err := h.files.EmptyTrash(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
