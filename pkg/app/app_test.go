package app

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/internal/service"
	"github.com/yeisme/clouddrive/pkg/internal/storage/kv"
	"github.com/yeisme/clouddrive/pkg/internal/store"
	"github.com/yeisme/clouddrive/pkg/internal/types"
)

// countingBlobs 只统计签名次数的对象存储.
type countingBlobs struct {
	mu    sync.Mutex
	signs int
}

func (b *countingBlobs) Put(_ context.Context, _ string, r io.Reader, _ int64, _ string) error {
	_, err := io.Copy(io.Discard, r)

	return err
}

func (b *countingBlobs) SignedGetURL(_ context.Context, key string, _ time.Duration, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.signs++

	return "https://blobs.example/" + key, nil
}

func (b *countingBlobs) Delete(context.Context, string) error { return nil }

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+filepath.Join(t.TempDir(), "meta.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}

	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatal(err)
	}

	return store.NewFileStore(db)
}

// TestServiceOptionsLinkCache 测试 drive.link_cache 开关决定是否复用签名链接.
func TestServiceOptionsLinkCache(t *testing.T) {
	for _, tc := range []struct {
		name      string
		linkCache bool
		wantSigns int
	}{
		{"enabled", true, 1},
		{"disabled", false, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			kvStore, err := kv.NewKVStore(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
			if err != nil {
				t.Fatal(err)
			}

			t.Cleanup(func() { _ = kvStore.Close() })

			pub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
			t.Cleanup(func() { _ = pub.Close() })

			cfg := &configs.AppConfig{}
			cfg.Drive.LinkCache = tc.linkCache

			blobs := &countingBlobs{}
			svc := service.NewFileService(newFileStore(t), blobs, service.DefaultOptions(), serviceOptions(cfg, kvStore, pub)...)

			rec, err := svc.Upload(ctx, types.UploadInput{
				Name: "a.txt", ContentType: "text/plain", Size: 5, Body: strings.NewReader("hello"),
			})
			if err != nil {
				t.Fatal(err)
			}

			for range 3 {
				if _, err := svc.GetDownloadLink(ctx, rec.ID); err != nil {
					t.Fatal(err)
				}
			}

			if blobs.signs != tc.wantSigns {
				t.Errorf("signs = %d, want %d", blobs.signs, tc.wantSigns)
			}
		})
	}
}
