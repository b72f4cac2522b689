package service

import (
	"context"
	"fmt"
	"math"

	"github.com/yeisme/clouddrive/pkg/internal/store"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// List 按视图分页列出文件，按创建时间倒序.
func (s *FileService) List(ctx context.Context, q types.ListFilesQuery) (_ *types.ListFilesResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.List")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.ObserveFileOp(metrics.OpList, err)
	}()

	view, ok := store.ParseView(q.View)
	if !ok {
		return nil, fmt.Errorf("%w: unknown view %q", ErrValidation, q.View)
	}

	page, limit := s.normalizePage(q.Page, q.Limit)

	filter := store.Filter{View: view}
	if view == store.ViewRecent {
		filter.Since = s.now().Add(-s.opts.RecentWindow)
	}

	files, total, err := s.meta.List(ctx, filter, pageOffset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return &types.ListFilesResponse{
		Files:      files,
		Pagination: types.NewPagination(page, limit, total),
	}, nil
}

// normalizePage 补全默认页码与每页条数，并限制每页上限.
func (s *FileService) normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}

	if limit <= 0 {
		limit = s.opts.DefaultPageSize
	}

	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}

	return page, limit
}

// pageOffset 计算偏移量，溢出时饱和到 MaxInt.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}

	return (page - 1) * limit
}
