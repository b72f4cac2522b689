package service

import (
	"context"
	"fmt"
	"time"

	ctxPkg "github.com/yeisme/clouddrive/pkg/context"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// trashBatchSize 批量清理时每次读取的记录数.
const trashBatchSize = 100

// 批量清理的触发来源.
const (
	SourceEmptyTrash     = "trash.empty"
	SourceTrashRetention = "trash.retention"
)

// EmptyTrash 彻底删除回收站中的全部文件，单个失败不影响其余.
func (s *FileService) EmptyTrash(ctx context.Context) (_ *types.PurgeReport, err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.EmptyTrash")
	defer func() { tracing.RecordError(span, err); span.End() }()

	return s.purgeTrashed(ctx, time.Time{}, SourceEmptyTrash)
}

// PurgeTrashedBefore 彻底删除在 cutoff 之前移入回收站的文件.
func (s *FileService) PurgeTrashedBefore(ctx context.Context, cutoff time.Time) (_ *types.PurgeReport, err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.PurgeTrashedBefore")
	defer func() { tracing.RecordError(span, err); span.End() }()

	return s.purgeTrashed(ctx, cutoff, SourceTrashRetention)
}

func (s *FileService) purgeTrashed(ctx context.Context, cutoff time.Time, source string) (*types.PurgeReport, error) {
	report := &types.PurgeReport{Failed: []types.PurgeFailure{}}

	var cursor uint

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch, err := s.meta.ListTrashed(ctx, cutoff, cursor, trashBatchSize)
		if err != nil {
			return report, fmt.Errorf("list trashed files: %w", err)
		}

		for _, rec := range batch {
			cursor = rec.ID

			err := s.purge(ctx, rec.ID, source)
			metrics.ObserveFileOp(metrics.OpPurge, err)

			if err != nil {
				report.Failed = append(report.Failed, types.PurgeFailure{ID: rec.ID, Name: rec.Name, Error: err.Error()})

				continue
			}

			report.Purged++
		}

		if len(batch) < trashBatchSize {
			break
		}
	}

	ctxPkg.Logger(ctx).Info().
		Str("source", source).
		Int("purged", report.Purged).
		Int("failed", len(report.Failed)).
		Msg("回收站清理完成")

	return report, nil
}
