package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪 ID，来自请求的 span.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识一条文件记录及其对象.
type FileRef struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	StorageKey  string `json:"storage_key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Checksum    string `json:"checksum,omitempty"`
}

// FileEventPayload 文件生命周期事件负载.
type FileEventPayload struct {
	File FileRef `json:"file"`
	// Source 触发来源：api、trash.empty、trash.retention 等.
	Source string `json:"source,omitempty"`
}

// BlobOrphanedPayload 对象已写入但记录未能创建.
type BlobOrphanedPayload struct {
	StorageKey  string `json:"storage_key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Reason      string `json:"reason"`
}
