package handle

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/internal/service"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/rule"
)

// multipartOverhead multipart 边界与头部预留的字节数.
const multipartOverhead = 1 << 20

// formField 上传文件使用的表单字段.
const formField = "file"

// ListFiles 分页列出文件.
//
//	GET /api/files?page=&limit=&view=drive|recent|starred|trash
func (h *Handler) ListFiles(c *gin.Context) {
	var q types.ListFilesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, bindMessage(err))
		return
	}

	resp, err := h.files.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadFile 通过 multipart 表单上传单个文件.
//
//	POST /api/files  (multipart/form-data, 字段 file)
func (h *Handler) UploadFile(c *gin.Context) {
	limit := h.maxUploadBytes + multipartOverhead
	if c.Request.ContentLength > limit {
		writeError(c, fmt.Errorf("%w: request body exceeds %d bytes", service.ErrTooLarge, limit))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError

		switch {
		case errors.As(err, &tooLarge):
			writeError(c, fmt.Errorf("%w: request body exceeds %d bytes", service.ErrTooLarge, tooLarge.Limit))
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			badRequest(c, `missing multipart field "file"`)
		default:
			badRequest(c, err.Error())
		}

		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeQuietly(f)

	contentType, err := partContentType(fh, f)
	if err != nil {
		writeError(c, err)
		return
	}

	rec, err := h.files.Upload(c.Request.Context(), types.UploadInput{
		Name:        fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// partContentType 取分片声明的类型，缺失或为通用二进制时按内容识别.
func partContentType(fh *multipart.FileHeader, f multipart.File) (string, error) {
	declared := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if declared != "" && !strings.EqualFold(declared, "application/octet-stream") {
		return declared, nil
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	return mt.String(), nil
}

// GetFile 返回单个文件的元数据.
func (h *Handler) GetFile(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	rec, err := h.files.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// DownloadLink 返回短期有效的签名下载链接.
func (h *Handler) DownloadLink(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	link, err := h.files.GetDownloadLink(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// Star 收藏文件.
func (h *Handler) Star(c *gin.Context) {
	h.setFlag(c, func(id uint) error { return h.files.SetStarred(c.Request.Context(), id, true) }, "file starred")
}

// Unstar 取消收藏.
func (h *Handler) Unstar(c *gin.Context) {
	h.setFlag(c, func(id uint) error { return h.files.SetStarred(c.Request.Context(), id, false) }, "file unstarred")
}

// Trash 移入回收站.
func (h *Handler) Trash(c *gin.Context) {
	h.setFlag(c, func(id uint) error { return h.files.SetTrashed(c.Request.Context(), id, true) }, "file moved to trash")
}

// Restore 从回收站恢复.
func (h *Handler) Restore(c *gin.Context) {
	h.setFlag(c, func(id uint) error { return h.files.SetTrashed(c.Request.Context(), id, false) }, "file restored")
}

// PurgeFile 彻底删除文件及其对象.
func (h *Handler) PurgeFile(c *gin.Context) {
	h.setFlag(c, func(id uint) error { return h.files.PurgeForever(c.Request.Context(), id) }, "file deleted permanently")
}

func (h *Handler) setFlag(c *gin.Context, op func(id uint) error, msg string) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	if err := op(id); err != nil {
		writeError(c, err)
		return
	}

	ack(c, msg)
}

// fileID 绑定路径中的文件 ID，失败时已写出 400.
func fileID(c *gin.Context) (uint, bool) {
	var p types.FileIDParam
	if err := c.ShouldBindUri(&p); err != nil {
		badRequest(c, "invalid file id: "+bindMessage(err))
		return 0, false
	}

	return p.ID, true
}

// bindMessage 把绑定或校验错误整理成一行说明.
func bindMessage(err error) string {
	errs := rule.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}

	parts := make([]string, 0, len(errs))
	for field, r := range errs {
		parts = append(parts, field+" failed "+r)
	}

	return strings.Join(parts, "; ")
}
