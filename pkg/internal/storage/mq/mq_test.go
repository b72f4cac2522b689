package mq_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/storage/mq"
	"github.com/yeisme/clouddrive/pkg/queue"
)

func newGoChannelClient(t *testing.T) *mq.Client {
	t.Helper()

	cfg := configs.MQConfig{
		Type:      configs.MQTypeGoChannel,
		GoChannel: configs.MQGoChannelConfig{OutputBuffer: 8},
	}

	client, err := mq.New(context.Background(), cfg, configs.MetricsConfig{})
	if err != nil {
		t.Fatalf("mq.New: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRegisteredTypes(t *testing.T) {
	types := mq.GetRegisteredMQTypes()
	want := []configs.MQType{configs.MQTypeGoChannel, configs.MQTypeNATS, configs.MQTypeRedis}

	if len(types) != len(want) {
		t.Fatalf("types = %v, want %v", types, want)
	}

	for i := range want {
		if types[i] != want[i] {
			t.Errorf("types[%d] = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestUnsupportedType(t *testing.T) {
	_, err := mq.New(context.Background(), configs.MQConfig{Type: "kafka"}, configs.MetricsConfig{})
	if err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestConsumerReceivesEvent(t *testing.T) {
	client := newGoChannelClient(t)

	got := make(chan queue.Message[queue.FileEventPayload], 1)

	client.AddConsumer("test", queue.TopicFileTrashed, func(msg *message.Message) error {
		env, err := queue.ParseFileEvent(msg)
		if err != nil {
			return err
		}
		got <- env

		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	payload := queue.FileEventPayload{File: queue.FileRef{ID: 3, Name: "x.png"}, Source: "api"}
	if err := queue.PublishFileEvent(client, queue.TopicFileTrashed, payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case env := <-got:
		if env.Payload.File.ID != 3 || env.Header.Topic != queue.TopicFileTrashed {
			t.Errorf("unexpected envelope %+v", env)
		}
	case <-ctx.Done():
		t.Fatal("consumer did not receive event")
	}
}

func TestSubscribeDirect(t *testing.T) {
	client := newGoChannelClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := client.Subscribe(ctx, queue.TopicBlobOrphaned)
	if err != nil {
		t.Fatal(err)
	}

	err = queue.PublishBlobOrphaned(client.Publisher(), queue.BlobOrphanedPayload{StorageKey: "k", Reason: "db down"})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-ch:
		msg.Ack()

		env, err := queue.ParseBlobOrphaned(msg)
		if err != nil || env.Payload.StorageKey != "k" {
			t.Errorf("env = %+v, err = %v", env, err)
		}
	case <-ctx.Done():
		t.Fatal("no message")
	}
}
