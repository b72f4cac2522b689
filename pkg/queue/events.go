package queue

import "github.com/ThreeDotsLabs/watermill/message"

// PublishFileEvent 发布文件生命周期事件.
func PublishFileEvent(pub message.Publisher, topic string, payload FileEventPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// PublishBlobOrphaned 发布 cd.blob.orphaned 事件.
func PublishBlobOrphaned(pub message.Publisher, payload BlobOrphanedPayload, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(TopicBlobOrphaned, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicBlobOrphaned, msg)
}

// ParseFileEvent 将 Watermill 消息解析为强类型 Envelope.
func ParseFileEvent(msg *message.Message) (Message[FileEventPayload], error) {
	return ParseWatermillMessage[FileEventPayload](msg)
}

// ParseBlobOrphaned 解析 cd.blob.orphaned 事件.
func ParseBlobOrphaned(msg *message.Message) (Message[BlobOrphanedPayload], error) {
	return ParseWatermillMessage[BlobOrphanedPayload](msg)
}
