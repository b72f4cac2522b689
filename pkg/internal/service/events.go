package service

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	ctxPkg "github.com/yeisme/clouddrive/pkg/context"
	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/queue"
)

// Producer 事件头中的生产者名.
const Producer = "clouddrive"

// topicEnabled 根据配置判断主题是否需要发布.
func (s *FileService) topicEnabled(topic string) bool {
	ev := s.opts.Events
	if s.pub == nil || !ev.Enabled {
		return false
	}

	switch topic {
	case queue.TopicFileUploaded:
		return ev.File.Uploaded
	case queue.TopicFileAccessed:
		return ev.File.Accessed
	case queue.TopicFileStarred, queue.TopicFileUnstarred:
		return ev.File.Starred
	case queue.TopicFileTrashed, queue.TopicFileRestored:
		return ev.File.Trashed
	case queue.TopicFilePurged:
		return ev.File.Purged
	case queue.TopicBlobOrphaned:
		return ev.File.Orphaned
	default:
		return false
	}
}

// headerOpts 事件头选项，附带当前 trace id.
func (s *FileService) headerOpts(ctx context.Context) []queue.HeaderOption {
	opts := []queue.HeaderOption{queue.WithProducer(Producer)}

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	return opts
}

// publishFile 发布文件事件，失败只记录日志.
func (s *FileService) publishFile(ctx context.Context, topic string, rec *model.File, source string) {
	if rec == nil || !s.topicEnabled(topic) {
		return
	}

	payload := queue.FileEventPayload{File: fileRef(rec), Source: source}

	if err := queue.PublishFileEvent(s.pub, topic, payload, s.headerOpts(ctx)...); err != nil {
		ctxPkg.Logger(ctx).Warn().Err(err).Str("topic", topic).Uint("id", rec.ID).Msg("事件发布失败")
	}
}

func fileRef(rec *model.File) queue.FileRef {
	return queue.FileRef{
		ID:          rec.ID,
		Name:        rec.Name,
		StorageKey:  rec.StorageKey,
		Size:        rec.Size,
		ContentType: rec.ContentType,
		Checksum:    rec.Checksum,
	}
}
