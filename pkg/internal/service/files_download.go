package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/clouddrive/pkg/cache"
	ctxPkg "github.com/yeisme/clouddrive/pkg/context"
	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/queue"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// signedLink 缓存中保存的签名链接.
type signedLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetDownloadLink 为文件签发限时下载链接，字节不经过本服务.
func (s *FileService) GetDownloadLink(ctx context.Context, id uint) (_ *types.DownloadLinkResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.GetDownloadLink")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.ObserveFileOp(metrics.OpDownload, err)
	}()

	rec, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	link, err := s.signedLink(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("sign download link for %d: %w", id, err)
	}

	s.publishFile(ctx, queue.TopicFileAccessed, rec, "api")

	return &types.DownloadLinkResponse{
		DownloadURL: link.URL,
		FileName:    rec.Name,
		ContentType: rec.ContentType,
		ExpiresIn:   ceilSeconds(link.ExpiresAt.Sub(s.now())),
	}, nil
}

// signedLink 优先读取缓存；缓存保留签名有效期的一半，保证返回的链接至少还有一半有效期.
func (s *FileService) signedLink(ctx context.Context, rec *model.File) (signedLink, error) {
	sign := func(ctx context.Context) (signedLink, error) {
		issued := s.now()

		url, err := s.blobs.SignedGetURL(ctx, rec.StorageKey, s.opts.PresignTTL, rec.Name)
		if err != nil {
			return signedLink{}, err
		}

		return signedLink{URL: url, ExpiresAt: issued.Add(s.opts.PresignTTL)}, nil
	}

	if s.links == nil {
		return sign(ctx)
	}

	// 只有签名失败会返回错误，缓存层错误由 ObserveLinkCacheError 计数
	link, hit, err := cache.GetOrSet(ctx, s.links, rec.StorageKey, sign, s.opts.PresignTTL/2)
	if err != nil {
		return signedLink{}, err
	}

	if hit {
		metrics.LinkCache.WithLabelValues("hit").Inc()
	} else {
		metrics.LinkCache.WithLabelValues("miss").Inc()
	}

	return link, nil
}

// ObserveLinkCacheError 记录下载链接缓存的读写失败，用作 cache.WithErrorHandler 的回调.
func ObserveLinkCacheError(ctx context.Context, op string, err error) {
	metrics.LinkCache.WithLabelValues("error").Inc()
	ctxPkg.Logger(ctx).Warn().Err(err).Str("op", op).Msg("下载链接缓存读写失败")
}

// forgetLink 删除缓存的下载链接.
func (s *FileService) forgetLink(ctx context.Context, storageKey string) {
	if s.links == nil {
		return
	}

	if err := s.links.Delete(ctx, storageKey); err != nil {
		ctxPkg.Logger(ctx).Warn().Err(err).Str("storage_key", storageKey).Msg("下载链接缓存删除失败")
	}
}

// ceilSeconds 向上取整为秒.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}

	return int((d + time.Second - 1) / time.Second)
}
