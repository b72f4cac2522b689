// Package types 定义 HTTP 接口与服务层之间传递的请求与响应结构.
package types

import (
	"io"

	"github.com/yeisme/clouddrive/pkg/internal/model"
)

// UploadInput 上传一个文件所需的数据，Body 由调用方负责关闭.
type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ListFilesQuery 文件列表查询参数.
type ListFilesQuery struct {
	Page  int    `form:"page"  rule:"omitempty,min=1"`
	Limit int    `form:"limit" rule:"omitempty,min=1"`
	View  string `form:"view"  rule:"omitempty,oneof=drive recent starred trash"`
}

// Pagination 分页信息.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPagination 根据页码、每页条数与总数计算分页信息.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Pagination{
		CurrentPage: page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

// ListFilesResponse 文件列表响应.
type ListFilesResponse struct {
	Files      []model.File `json:"files"`
	Pagination Pagination   `json:"pagination"`
}

// DownloadLinkResponse 签名下载链接，ExpiresIn 为剩余有效秒数.
type DownloadLinkResponse struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// FileIDParam 路径中的文件 ID.
type FileIDParam struct {
	ID uint `uri:"id" rule:"required,min=1"`
}
