package handle

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/clouddrive/pkg/internal/types"
)

const (
	statusOK        = "ok"
	statusUnhealthy = "unhealthy"
)

// Health 存活检查.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:    statusOK,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// HealthComponent 检查单个依赖组件，路径参数 component 为 db、s3 等.
func (h *Handler) HealthComponent(c *gin.Context) {
	name := c.Param("component")

	p, ok := h.probes[name]
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: types.ErrorBody{Code: CodeNotFound, Message: "unknown component " + name}})
		return
	}

	res := h.probe(c.Request.Context(), name, p)
	c.JSON(componentStatus(res), res)
}

// HealthReady 并行检查全部依赖组件，任一失败返回 503.
func (h *Handler) HealthReady(c *gin.Context) {
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}

	sort.Strings(names)

	results := make([]types.ComponentHealth, len(names))

	g, ctx := errgroup.WithContext(c.Request.Context())
	for i, name := range names {
		g.Go(func() error {
			results[i] = h.probe(ctx, name, h.probes[name])
			return nil
		})
	}

	_ = g.Wait()

	status := http.StatusOK

	for _, r := range results {
		if r.Status != statusOK {
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{"components": results})
}

func (h *Handler) probe(ctx context.Context, name string, p Prober) types.ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()

	if err := p.HealthCheck(ctx); err != nil {
		return types.ComponentHealth{Component: name, Status: statusUnhealthy, Error: err.Error()}
	}

	return types.ComponentHealth{Component: name, Status: statusOK}
}

func componentStatus(r types.ComponentHealth) int {
	if r.Status == statusOK {
		return http.StatusOK
	}

	return http.StatusServiceUnavailable
}
