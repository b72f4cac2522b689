package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/scheduler"
)

// Jobs 返回所有后台任务信息.
func (h *Handler) Jobs(c *gin.Context) {
	if h.jobs == nil {
		c.JSON(http.StatusOK, gin.H{"jobs": []scheduler.JobInfo{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": h.jobs.GetJobInfos()})
}

// RunJob 立即触发一次后台任务，任务异步执行.
//
//	POST /api/jobs/:name/run
func (h *Handler) RunJob(c *gin.Context) {
	name := c.Param("name")

	if h.jobs == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: types.ErrorBody{Code: CodeNotFound, Message: "job " + name + " not found"}})
		return
	}

	if err := h.jobs.RunNow(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, types.ErrorResponse{Error: types.ErrorBody{Code: CodeNotFound, Message: err.Error()}})
			return
		}

		writeError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, types.AckResponse{Success: true, Message: "job " + name + " triggered"})
}
