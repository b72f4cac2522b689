// Package queue 定义网盘生命周期事件的主题、信封与编解码.
//
// 信封 JSON：
//
//	{
//	  "header": {"topic": "cd.file.uploaded", "trace_id": "...", "producer": "clouddrive",
//	             "occurred_at": "2025-01-02T03:04:05.123456Z", "version": "v1"},
//	  "payload": {"file": {"id": 1, "name": "a.txt", ...}, "source": "api"}
//	}
//
// 发布：
//
//	_ = queue.PublishFileEvent(pub, queue.TopicFileUploaded, payload, queue.WithProducer("clouddrive"))
package queue

import (
	"errors"
	"fmt"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PayloadVersionV1 当前负载版本.
const PayloadVersionV1 = "v1"

// watermill 消息元数据键，便于不解码负载就能路由或过滤.
const (
	MetaTopic      = "topic"
	MetaOccurredAt = "occurred_at"
	MetaVersion    = "version"
	MetaTraceID    = "trace_id"
	MetaProducer   = "producer"
)

// ErrUnsupportedVersion 负载版本无法识别.
var ErrUnsupportedVersion = errors.New("queue: unsupported payload version")

// HeaderOption 修改事件头.
type HeaderOption = func(*EventHeader)

// NewEventHeader 创建事件头，发生时间取当前 UTC 时间.
func NewEventHeader(topic string, opts ...HeaderOption) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}

	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// WithOccurredAt 覆盖发生时间.
func WithOccurredAt(t time.Time) HeaderOption {
	return func(h *EventHeader) { h.OccurredAt = t.UTC() }
}

// Encode 序列化信封.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 反序列化信封并校验版本.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]
	if err := sonic.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("queue: decode envelope: %w", err)
	}

	if m.Header.Version != "" && m.Header.Version != PayloadVersionV1 {
		return m, fmt.Errorf("%w: %s", ErrUnsupportedVersion, m.Header.Version)
	}

	return m, nil
}

// NewWatermillMessage 构造 watermill 消息：ULID 作为消息 ID，事件头同时写入元数据.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: encode %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewULID(), data)
	msg.Metadata.Set(MetaTopic, topic)
	msg.Metadata.Set(MetaOccurredAt, header.OccurredAt.Format(time.RFC3339Nano))
	msg.Metadata.Set(MetaVersion, header.Version)

	if header.TraceID != "" {
		msg.Metadata.Set(MetaTraceID, header.TraceID)
	}

	if header.Producer != "" {
		msg.Metadata.Set(MetaProducer, header.Producer)
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
