package service

import (
	"context"
	"errors"
	"fmt"

	ctxPkg "github.com/yeisme/clouddrive/pkg/context"
	"github.com/yeisme/clouddrive/pkg/internal/store"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/queue"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// SetStarred 加星或取消加星，重复设置同一个值视为成功.
func (s *FileService) SetStarred(ctx context.Context, id uint, starred bool) (err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.SetStarred")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.ObserveFileOp(metrics.OpStar, err)
	}()

	if err := s.meta.SetStarred(ctx, id, starred); err != nil {
		return mapUpdateErr(id, err)
	}

	topic := queue.TopicFileUnstarred
	if starred {
		topic = queue.TopicFileStarred
	}

	s.publishFlagChange(ctx, topic, id)

	return nil
}

// SetTrashed 移入或移出回收站，对象存储不受影响.
func (s *FileService) SetTrashed(ctx context.Context, id uint, trashed bool) (err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.SetTrashed")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.ObserveFileOp(metrics.OpTrash, err)
	}()

	if err := s.meta.SetTrashed(ctx, id, trashed); err != nil {
		return mapUpdateErr(id, err)
	}

	topic := queue.TopicFileRestored
	if trashed {
		topic = queue.TopicFileTrashed
	}

	s.publishFlagChange(ctx, topic, id)

	return nil
}

// publishFlagChange 读取最新记录作为事件负载.
func (s *FileService) publishFlagChange(ctx context.Context, topic string, id uint) {
	if !s.topicEnabled(topic) {
		return
	}

	rec, err := s.meta.Get(ctx, id)
	if err != nil {
		ctxPkg.Logger(ctx).Warn().Err(err).Uint("id", id).Str("topic", topic).Msg("读取记录失败，跳过事件")

		return
	}

	s.publishFile(ctx, topic, rec, "api")
}

// PurgeForever 彻底删除：先删对象，成功后再删记录.
func (s *FileService) PurgeForever(ctx context.Context, id uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.PurgeForever")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.ObserveFileOp(metrics.OpPurge, err)
	}()

	return s.purge(ctx, id, "api")
}

func (s *FileService) purge(ctx context.Context, id uint, source string) error {
	l := ctxPkg.Logger(ctx)

	rec, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, rec.StorageKey); err != nil {
		l.Error().Err(err).Uint("id", id).Str("storage_key", rec.StorageKey).Msg("对象删除失败，保留记录")

		return fmt.Errorf("%w: %w", ErrStorageDelete, err)
	}

	s.forgetLink(ctx, rec.StorageKey)

	if err := s.meta.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}

		l.Error().Err(err).Uint("id", id).Str("storage_key", rec.StorageKey).Msg("对象已删除但记录删除失败")

		return fmt.Errorf("%w: %w", ErrMetadataWrite, err)
	}

	l.Info().Uint("id", id).Str("name", rec.Name).Str("source", source).Msg("文件已彻底删除")
	s.publishFile(ctx, queue.TopicFilePurged, rec, source)

	return nil
}
