package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/clouddrive/pkg/context"
	"github.com/yeisme/clouddrive/pkg/internal/service"
	"github.com/yeisme/clouddrive/pkg/internal/types"
)

// 错误码.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeTooLarge           = "TOO_LARGE"
	CodeStorageWrite       = "STORAGE_WRITE_ERROR"
	CodeStorageDelete      = "STORAGE_DELETE_ERROR"
	CodeMetadataWrite      = "METADATA_WRITE_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// errorMapping 服务层错误到 HTTP 状态与错误码的映射.
type errorMapping struct {
	target error
	status int
	code   string
	// public 为 true 时把错误文本返回给客户端
	public bool
}

// errorTable 唯一的错误翻译表，按顺序匹配.
var errorTable = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, CodeNotFound, true},
	{service.ErrValidation, http.StatusBadRequest, CodeValidation, true},
	{service.ErrTooLarge, http.StatusRequestEntityTooLarge, CodeTooLarge, true},
	{service.ErrStorageWrite, http.StatusInternalServerError, CodeStorageWrite, false},
	{service.ErrStorageDelete, http.StatusInternalServerError, CodeStorageDelete, false},
	{service.ErrMetadataWrite, http.StatusInternalServerError, CodeMetadataWrite, false},
}

// translate 返回错误对应的状态码、错误码与对外消息.
func translate(err error) (int, string, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			if m.public {
				return m.status, m.code, err.Error()
			}

			return m.status, m.code, m.target.Error()
		}
	}

	return http.StatusInternalServerError, CodeInternal, "internal server error"
}

// writeError 翻译错误并写出统一错误响应，5xx 记录错误日志.
func writeError(c *gin.Context, err error) {
	status, code, msg := translate(err)

	l := ctxPkg.Logger(c.Request.Context())
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("code", code).Msg("request failed")
	} else {
		l.Debug().Err(err).Str("code", code).Msg("request rejected")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: types.ErrorBody{Code: code, Message: msg}})
}

// badRequest 写出参数错误.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: types.ErrorBody{Code: CodeValidation, Message: msg}})
}

func ack(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, types.AckResponse{Success: true, Message: msg})
}
