package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	ctxPkg "github.com/yeisme/clouddrive/pkg/context"
)

// GinLoggerMiddleware 使用zerolog记录Gin请求日志，并把带请求 ID 与追踪信息的 logger 放入请求上下文.
// 需放在 TracingMiddleware 与 RequestIDMiddleware 之后.
func GinLoggerMiddleware(base *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		l := ctxPkg.WithTraceContext(c.Request.Context(), base.With().Str("request_id", RequestID(c)).Logger())
		c.Request = c.Request.WithContext(ctxPkg.WithLogger(c.Request.Context(), l))

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		status := c.Writer.Status()

		var event *zerolog.Event

		switch {
		case status >= http.StatusInternalServerError:
			event = l.Error()
		case status >= http.StatusBadRequest:
			event = l.Warn()
		default:
			event = l.Info()
		}

		event = event.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("client_ip", c.ClientIP()).
			Int("size", c.Writer.Size())

		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}

		event.Msg("HTTP request")
	}
}
