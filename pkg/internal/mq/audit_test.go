package mq_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/mq"
	storagemq "github.com/yeisme/clouddrive/pkg/internal/storage/mq"
	"github.com/yeisme/clouddrive/pkg/queue"
)

// syncBuffer 供并发写入的日志缓冲.
type syncBuffer struct {
	ch chan string
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.ch <- string(bytes.Clone(p))

	return len(p), nil
}

func TestAuditLogsOrphanedBlob(t *testing.T) {
	client, err := storagemq.New(context.Background(), configs.MQConfig{
		Type:      configs.MQTypeGoChannel,
		GoChannel: configs.MQGoChannelConfig{OutputBuffer: 4},
	}, configs.MetricsConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	buf := &syncBuffer{ch: make(chan string, 16)}
	logger := zerolog.New(buf)

	mq.RegisterAudit(client, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Run(ctx); err != nil {
		t.Fatal(err)
	}

	err = queue.PublishBlobOrphaned(client, queue.BlobOrphanedPayload{StorageKey: "files/2024/01/x", Reason: "db down"})
	if err != nil {
		t.Fatal(err)
	}

	for {
		select {
		case line := <-buf.ch:
			if strings.Contains(line, "files/2024/01/x") {
				if !strings.Contains(line, `"level":"error"`) {
					t.Errorf("orphan should be logged at error level: %s", line)
				}

				return
			}
		case <-ctx.Done():
			t.Fatal("audit consumer did not log the orphan")
		}
	}
}
