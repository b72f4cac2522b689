// Package mq 注册进程内的事件消费者.
package mq

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/clouddrive/pkg/queue"
)

// Consumer 可注册消费处理器的消息客户端.
type Consumer interface {
	AddConsumer(name, topic string, handler message.NoPublishHandlerFunc)
}

// RegisterAudit 注册审计消费者：孤儿对象以 error 级别记录，彻底删除以 info 级别记录.
func RegisterAudit(c Consumer, logger *zerolog.Logger) {
	l := logger.With().Str("component", "audit").Logger()

	c.AddConsumer("audit.blob_orphaned", queue.TopicBlobOrphaned, func(msg *message.Message) error {
		env, err := queue.ParseBlobOrphaned(msg)
		if err != nil {
			// 无法解析的消息不重投
			l.Warn().Err(err).Str("uuid", msg.UUID).Msg("无法解析孤儿对象事件")

			return nil
		}

		l.Error().
			Str("storage_key", env.Payload.StorageKey).
			Int64("size", env.Payload.Size).
			Str("reason", env.Payload.Reason).
			Str("trace_id", env.Header.TraceID).
			Time("occurred_at", env.Header.OccurredAt).
			Msg("孤儿对象待人工处理")

		return nil
	})

	c.AddConsumer("audit.file_purged", queue.TopicFilePurged, func(msg *message.Message) error {
		env, err := queue.ParseFileEvent(msg)
		if err != nil {
			l.Warn().Err(err).Str("uuid", msg.UUID).Msg("无法解析删除事件")

			return nil
		}

		l.Info().
			Uint("id", env.Payload.File.ID).
			Str("name", env.Payload.File.Name).
			Str("storage_key", env.Payload.File.StorageKey).
			Str("source", env.Payload.Source).
			Msg("文件已彻底删除")

		return nil
	})
}
