// Package handle 提供 HTTP 请求处理器，负责参数绑定、调用文件服务与错误翻译.
package handle

import (
	"context"
	"io"
	"time"

	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/rule"
	"github.com/yeisme/clouddrive/pkg/scheduler"
)

// FileService 处理器依赖的文件服务.
type FileService interface {
	Upload(ctx context.Context, in types.UploadInput) (*model.File, error)
	List(ctx context.Context, q types.ListFilesQuery) (*types.ListFilesResponse, error)
	Get(ctx context.Context, id uint) (*model.File, error)
	GetDownloadLink(ctx context.Context, id uint) (*types.DownloadLinkResponse, error)
	SetStarred(ctx context.Context, id uint, starred bool) error
	SetTrashed(ctx context.Context, id uint, trashed bool) error
	PurgeForever(ctx context.Context, id uint) error
	EmptyTrash(ctx context.Context) (*types.PurgeReport, error)
	Stats(ctx context.Context) (*types.StatsResponse, error)
}

// Prober 可被健康检查的依赖组件.
type Prober interface {
	HealthCheck(ctx context.Context) error
}

// JobRunner 后台任务的查询与手动触发.
type JobRunner interface {
	GetJobInfos() []scheduler.JobInfo
	RunNow(name string) error
}

// Handler 持有处理请求所需的依赖.
type Handler struct {
	files          FileService
	probes         map[string]Prober
	jobs           JobRunner
	version        string
	maxUploadBytes int64
	probeTimeout   time.Duration
	now            func() time.Time
}

// Option 处理器可选项.
type Option func(*Handler)

// WithProbe 注册组件健康检查，name 对应 /api/health/:name.
func WithProbe(name string, p Prober) Option {
	return func(h *Handler) {
		if p != nil {
			h.probes[name] = p
		}
	}
}

// WithJobs 开放后台任务接口.
func WithJobs(j JobRunner) Option {
	return func(h *Handler) { h.jobs = j }
}

// WithVersion 设置存活检查返回的版本号.
func WithVersion(v string) Option {
	return func(h *Handler) { h.version = v }
}

// WithMaxUploadBytes 设置单文件上限，用于限制请求体.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) { h.maxUploadBytes = n }
}

// New 创建处理器.
func New(files FileService, opts ...Option) *Handler {
	// gin 绑定与 pkg/rule 共用 `rule` 标签
	rule.Engine()

	h := &Handler{
		files:          files,
		probes:         map[string]Prober{},
		version:        "dev",
		maxUploadBytes: 100 << 20,
		probeTimeout:   2 * time.Second,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// closeQuietly 关闭上传的分片.
func closeQuietly(c io.Closer) {
	_ = c.Close()
}
