package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats 网盘用量统计.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.files.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
