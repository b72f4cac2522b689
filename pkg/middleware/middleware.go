// Package middleware 提供 gin 中间件：请求日志、追踪、指标、CORS、压缩、限流、熔断与身份校验.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeisme/clouddrive/pkg/internal/types"
)

// HeaderRequestID 请求 ID 头.
const HeaderRequestID = "X-Request-ID"

// 中间件产生的错误码.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// abortJSON 以统一错误格式终止请求.
func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: types.ErrorBody{Code: code, Message: message}})
}

// RequestIDMiddleware 透传或生成请求 ID，并写回响应头.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestID 返回当前请求的 ID.
func RequestID(c *gin.Context) string {
	return c.GetString(HeaderRequestID)
}
