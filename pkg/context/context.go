// Package context 拓展上下文功能，在请求链路中传递携带追踪信息的 logger.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	nlog "github.com/yeisme/clouddrive/pkg/log"
)

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		return logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}

	return logger
}

// WithLogger 把 logger 存入 context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// Logger 取出 context 中的 logger，不存在时退回全局 logger，并附加追踪字段.
func Logger(ctx context.Context) *zerolog.Logger {
	var base zerolog.Logger
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		base = *l
	} else {
		base = *nlog.Logger()
	}

	l := WithTraceContext(ctx, base)

	return &l
}
