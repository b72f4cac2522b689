// Package service 实现网盘的核心文件操作：上传、列表、下载链接、加星、回收站与彻底删除.
//
// 元数据库是列表与筛选的唯一来源，对象存储只保存字节.
// 上传先写对象再写记录，彻底删除先删对象再删记录；中间失败留下的孤儿对象只记录不修复.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/oklog/ulid"

	"github.com/yeisme/clouddrive/pkg/cache"
	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/internal/store"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// MetadataStore 文件元数据存储.
type MetadataStore interface {
	Insert(ctx context.Context, f *model.File) error
	Get(ctx context.Context, id uint) (*model.File, error)
	SetStarred(ctx context.Context, id uint, starred bool) error
	SetTrashed(ctx context.Context, id uint, trashed bool) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter store.Filter, offset, limit int) ([]model.File, int64, error)
	ListTrashed(ctx context.Context, before time.Time, afterID uint, limit int) ([]model.File, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// BlobStore 对象存储.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedGetURL(ctx context.Context, key string, ttl time.Duration, downloadName string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Options 文件服务参数.
type Options struct {
	MaxUploadBytes      int64
	AllowedMIMEPrefixes []string
	DefaultPageSize     int
	MaxPageSize         int
	RecentWindow        time.Duration
	PresignTTL          time.Duration
	KeyPrefix           string
	Events              configs.EventsConfig
}

// OptionsFromConfig 从应用配置构造服务参数.
func OptionsFromConfig(cfg *configs.AppConfig) Options {
	return Options{
		MaxUploadBytes:      cfg.Drive.MaxUploadBytes(),
		AllowedMIMEPrefixes: cfg.Drive.AllowedMIMEPrefixes,
		DefaultPageSize:     cfg.Drive.DefaultPageSize,
		MaxPageSize:         cfg.Drive.MaxPageSize,
		RecentWindow:        cfg.Drive.RecentWindow(),
		PresignTTL:          cfg.S3.PresignTTL,
		KeyPrefix:           cfg.S3.KeyPrefix,
		Events:              cfg.Events,
	}
}

// DefaultOptions 返回与默认配置一致的参数.
func DefaultOptions() Options {
	return Options{
		MaxUploadBytes:      configs.DefaultMaxUploadMB << 20,
		AllowedMIMEPrefixes: configs.DefaultAllowedMIMEPrefixes,
		DefaultPageSize:     configs.DefaultPageSize,
		MaxPageSize:         configs.DefaultMaxPageSize,
		RecentWindow:        configs.DefaultRecentDays * 24 * time.Hour,
		PresignTTL:          configs.DefaultS3PresignTTL,
		KeyPrefix:           configs.DefaultS3KeyPrefix,
	}
}

// Option 可选依赖.
type Option func(*FileService)

// WithLinkCache 启用下载链接缓存.
func WithLinkCache(c *cache.Cache) Option {
	return func(s *FileService) { s.links = c }
}

// WithPublisher 启用生命周期事件发布.
func WithPublisher(p message.Publisher) Option {
	return func(s *FileService) { s.pub = p }
}

// WithClock 替换时钟，用于测试.
func WithClock(now func() time.Time) Option {
	return func(s *FileService) { s.now = now }
}

// FileService 文件服务.
type FileService struct {
	meta  MetadataStore
	blobs BlobStore
	links *cache.Cache
	pub   message.Publisher
	opts  Options
	now   func() time.Time

	entropyMu sync.Mutex
	entropy   io.Reader
}

// NewFileService 创建文件服务.
func NewFileService(meta MetadataStore, blobs BlobStore, opts Options, extra ...Option) *FileService {
	s := &FileService{
		meta:    meta,
		blobs:   blobs,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(rand.Reader, 0),
	}

	for _, opt := range extra {
		opt(s)
	}

	return s
}

// Get 返回单条记录.
func (s *FileService) Get(ctx context.Context, id uint) (_ *model.File, err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.Get")
	defer func() { tracing.RecordError(span, err); span.End() }()

	return s.lookup(ctx, id)
}

// lookup 读取记录并把存储层错误映射为服务层错误.
func (s *FileService) lookup(ctx context.Context, id uint) (*model.File, error) {
	rec, err := s.meta.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", id, err)
	}

	return rec, nil
}

// mapUpdateErr 把标记更新的存储层错误映射为服务层错误.
func mapUpdateErr(id uint, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	return fmt.Errorf("%w: id %d: %w", ErrMetadataWrite, id, err)
}
