package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cespare/xxhash/v2"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/clouddrive/pkg/cache"
	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/internal/service"
	"github.com/yeisme/clouddrive/pkg/internal/storage/kv"
	"github.com/yeisme/clouddrive/pkg/internal/store"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/queue"
)

// fakeBlobs 内存对象存储.
type fakeBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr map[string]error
	putCalls  int
	signCalls int
	signErr   error
	lastTTL   time.Duration
	lastName  string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, deleteErr: map[string]error{}}
}

func (b *fakeBlobs) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	b.mu.Lock()
	b.putCalls++
	b.mu.Unlock()

	if b.putErr != nil {
		return b.putErr
	}

	data, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data

	return nil
}

func (b *fakeBlobs) SignedGetURL(_ context.Context, key string, ttl time.Duration, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.signCalls++
	b.lastTTL = ttl
	b.lastName = name

	if b.signErr != nil {
		return "", b.signErr
	}

	return fmt.Sprintf("https://blobs.example/%s?sig=%d", key, b.signCalls), nil
}

func (b *fakeBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.deleteErr[key]; err != nil {
		return err
	}

	delete(b.objects, key)

	return nil
}

func (b *fakeBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.objects[key]

	return ok
}

// recordingPublisher 记录发布的主题.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	msgs   []*message.Message
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, m := range msgs {
		p.topics = append(p.topics, topic)
		p.msgs = append(p.msgs, m)
	}

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0

	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}

	return n
}

// failingInsertStore 插入总是失败的元数据存储.
type failingInsertStore struct {
	*store.FileStore
}

func (failingInsertStore) Insert(context.Context, *model.File) error {
	return errors.New("disk full")
}

func newStore(t *testing.T) *store.FileStore {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "meta.db")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}

	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return store.NewFileStore(db)
}

func allEvents() configs.EventsConfig {
	return configs.EventsConfig{
		Enabled: true,
		File: configs.FileEventsConfig{
			Uploaded: true, Accessed: true, Starred: true,
			Trashed: true, Purged: true, Orphaned: true,
		},
	}
}

type fixture struct {
	svc   *service.FileService
	meta  *store.FileStore
	blobs *fakeBlobs
	pub   *recordingPublisher
}

func newFixture(t *testing.T, extra ...service.Option) *fixture {
	t.Helper()

	f := &fixture{meta: newStore(t), blobs: newFakeBlobs(), pub: &recordingPublisher{}}

	opts := service.DefaultOptions()
	opts.Events = allEvents()

	f.svc = service.NewFileService(f.meta, f.blobs, opts, append([]service.Option{service.WithPublisher(f.pub)}, extra...)...)

	return f
}

func (f *fixture) upload(t *testing.T, name, contentType, body string) *model.File {
	t.Helper()

	rec, err := f.svc.Upload(context.Background(), types.UploadInput{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	})
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}

	return rec
}

func (f *fixture) list(t *testing.T, view string, page, limit int) *types.ListFilesResponse {
	t.Helper()

	res, err := f.svc.List(context.Background(), types.ListFilesQuery{View: view, Page: page, Limit: limit})
	if err != nil {
		t.Fatalf("list %s: %v", view, err)
	}

	return res
}

func TestUploadThenList(t *testing.T) {
	f := newFixture(t)

	rec := f.upload(t, "a.txt", "text/plain", "hello")
	if rec.ID == 0 || rec.CreatedAt.IsZero() {
		t.Fatalf("record not populated: %+v", rec)
	}

	if rec.Checksum != fmt.Sprintf("%016x", xxhash.Sum64String("hello")) {
		t.Errorf("checksum = %s", rec.Checksum)
	}

	if !f.blobs.has(rec.StorageKey) {
		t.Error("blob not written")
	}

	res := f.list(t, "", 1, 20)
	if len(res.Files) != 1 || res.Files[0].ID != rec.ID || res.Files[0].Name != "a.txt" {
		t.Fatalf("files = %+v", res.Files)
	}

	want := types.Pagination{CurrentPage: 1, Limit: 20, TotalItems: 1, TotalPages: 1}
	if res.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", res.Pagination, want)
	}

	if f.pub.published(queue.TopicFileUploaded) != 1 {
		t.Error("uploaded event not published")
	}
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   types.UploadInput
		want error
	}{
		{"too large", types.UploadInput{Name: "big.bin", ContentType: "application/octet-stream", Size: 100<<20 + 1}, service.ErrTooLarge},
		{"bad type", types.UploadInput{Name: "f.woff", ContentType: "font/woff", Size: 1}, service.ErrValidation},
		{"bare prefix", types.UploadInput{Name: "f", ContentType: "image/", Size: 1}, service.ErrValidation},
		{"empty type", types.UploadInput{Name: "f", ContentType: "", Size: 1}, service.ErrValidation},
		{"empty name", types.UploadInput{Name: "  ", ContentType: "text/plain", Size: 1}, service.ErrValidation},
		{"path in name", types.UploadInput{Name: "../etc/passwd", ContentType: "text/plain", Size: 1}, service.ErrValidation},
		{"negative size", types.UploadInput{Name: "a", ContentType: "text/plain", Size: -1}, service.ErrValidation},
		{"name too long", types.UploadInput{Name: strings.Repeat("a", 513), ContentType: "text/plain", Size: 1}, service.ErrValidation},
		{"invalid utf8 name", types.UploadInput{Name: "bad\xff.txt", ContentType: "text/plain", Size: 1}, service.ErrValidation},
		{"type too long", types.UploadInput{Name: "a", ContentType: "text/" + strings.Repeat("x", 251), Size: 1}, service.ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.Body = strings.NewReader("x")

			if _, err := f.svc.Upload(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if f.blobs.putCalls != 0 || len(f.blobs.objects) != 0 {
		t.Errorf("rejected uploads wrote blobs: %d puts", f.blobs.putCalls)
	}

	if n := f.pub.published(queue.TopicBlobOrphaned); n != 0 {
		t.Errorf("rejected uploads reported %d orphans", n)
	}
}

func TestUploadAcceptsLongMultibyteName(t *testing.T) {
	f := newFixture(t)

	name := strings.Repeat("文", 508) + ".txt"

	rec := f.upload(t, name, "text/plain", "x")
	if rec.Name != name {
		t.Errorf("name = %q", rec.Name)
	}
}

func TestUploadAcceptsExactLimitAndMixedCase(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), types.UploadInput{
		Name: "img.PNG", ContentType: "Image/PNG", Size: 100 << 20, Body: bytes.NewReader(nil),
	})
	if err != nil {
		t.Fatalf("upload at limit: %v", err)
	}
}

func TestUploadBlobFailureCreatesNoRow(t *testing.T) {
	f := newFixture(t)
	f.blobs.putErr = errors.New("s3 unavailable")

	_, err := f.svc.Upload(context.Background(), types.UploadInput{
		Name: "a.txt", ContentType: "text/plain", Size: 5, Body: strings.NewReader("hello"),
	})
	if !errors.Is(err, service.ErrStorageWrite) {
		t.Fatalf("err = %v, want ErrStorageWrite", err)
	}

	if res := f.list(t, "drive", 1, 20); res.Pagination.TotalItems != 0 {
		t.Errorf("row created despite blob failure: %+v", res.Files)
	}
}

func TestUploadMetadataFailureReportsOrphan(t *testing.T) {
	blobs := newFakeBlobs()
	pub := &recordingPublisher{}

	opts := service.DefaultOptions()
	opts.Events = allEvents()

	svc := service.NewFileService(failingInsertStore{newStore(t)}, blobs, opts, service.WithPublisher(pub))

	_, err := svc.Upload(context.Background(), types.UploadInput{
		Name: "a.txt", ContentType: "text/plain", Size: 5, Body: strings.NewReader("hello"),
	})
	if !errors.Is(err, service.ErrMetadataWrite) {
		t.Fatalf("err = %v, want ErrMetadataWrite", err)
	}

	if len(blobs.objects) != 1 {
		t.Errorf("orphaned blob should remain, objects = %d", len(blobs.objects))
	}

	if pub.published(queue.TopicBlobOrphaned) != 1 {
		t.Fatal("orphan event not published")
	}

	env, err := queue.ParseBlobOrphaned(pub.msgs[0])
	if err != nil || env.Payload.Reason != "disk full" || env.Payload.StorageKey == "" {
		t.Errorf("orphan payload = %+v, err = %v", env.Payload, err)
	}
}

func TestStorageKeyFormat(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, service.WithClock(func() time.Time { return fixed }))

	a := f.upload(t, "my report (final).pdf", "application/pdf", "x")
	b := f.upload(t, "my report (final).pdf", "application/pdf", "y")

	re := regexp.MustCompile(`^files/2024/03/[0-9A-Z]{26}-my_report__final_.pdf$`)
	if !re.MatchString(a.StorageKey) {
		t.Errorf("storage key %q does not match %s", a.StorageKey, re)
	}

	if a.StorageKey == b.StorageKey {
		t.Error("same name uploads must get distinct keys")
	}

	if a.StorageKey >= b.StorageKey {
		t.Errorf("keys within one millisecond must be ordered: %s >= %s", a.StorageKey, b.StorageKey)
	}

	if a.Name != "my report (final).pdf" {
		t.Errorf("display name changed: %q", a.Name)
	}
}

func TestStorageKeysOrderedWithinMillisecond(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, service.WithClock(func() time.Time { return fixed }))

	var prev string

	for i := range 50 {
		rec := f.upload(t, fmt.Sprintf("f%d.txt", i), "text/plain", "x")
		if rec.StorageKey <= prev {
			t.Fatalf("key %d %q not after %q", i, rec.StorageKey, prev)
		}

		prev = rec.StorageKey
	}
}

func TestListPaginationCoversAllWithoutDuplicates(t *testing.T) {
	f := newFixture(t)

	var uploaded []uint
	for i := range 5 {
		uploaded = append(uploaded, f.upload(t, fmt.Sprintf("f%d.txt", i), "text/plain", "x").ID)
	}

	first := f.list(t, "drive", 1, 2)
	if first.Pagination.TotalItems != 5 || first.Pagination.TotalPages != 3 ||
		!first.Pagination.HasNext || first.Pagination.HasPrev {
		t.Fatalf("pagination = %+v", first.Pagination)
	}

	var seen []uint

	for page := 1; page <= 3; page++ {
		for _, file := range f.list(t, "drive", page, 2).Files {
			seen = append(seen, file.ID)
		}
	}

	if len(seen) != 5 {
		t.Fatalf("seen %v", seen)
	}

	for i, id := range seen {
		if want := uploaded[len(uploaded)-1-i]; id != want {
			t.Errorf("position %d = %d, want %d (newest first)", i, id, want)
		}
	}

	last := f.list(t, "drive", 3, 2).Pagination
	if last.HasNext || !last.HasPrev {
		t.Errorf("last page = %+v", last)
	}

	if beyond := f.list(t, "drive", 10, 2); len(beyond.Files) != 0 || beyond.Pagination.TotalItems != 5 {
		t.Errorf("beyond last page = %+v", beyond)
	}
}

func TestListDefaultsAndClamp(t *testing.T) {
	f := newFixture(t)

	if got := f.list(t, "", 0, 0).Pagination; got.CurrentPage != 1 || got.Limit != 20 {
		t.Errorf("defaults = %+v", got)
	}

	if got := f.list(t, "", 1, 1000).Pagination; got.Limit != 100 {
		t.Errorf("clamped limit = %d", got.Limit)
	}

	if got := f.list(t, "", 1<<62, 100); len(got.Files) != 0 {
		t.Errorf("huge page returned files")
	}

	_, err := f.svc.List(context.Background(), types.ListFilesQuery{View: "shared"})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("unknown view err = %v", err)
	}
}

func TestFlagsAreIdempotentAndDriveViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.upload(t, "a.txt", "text/plain", "hello")

	for range 2 {
		if err := f.svc.SetStarred(ctx, rec.ID, true); err != nil {
			t.Fatalf("star: %v", err)
		}
	}

	if n := len(f.list(t, "starred", 1, 20).Files); n != 1 {
		t.Errorf("starred view = %d", n)
	}

	for range 2 {
		if err := f.svc.SetTrashed(ctx, rec.ID, true); err != nil {
			t.Fatalf("trash: %v", err)
		}
	}

	if n := len(f.list(t, "drive", 1, 20).Files); n != 0 {
		t.Errorf("trashed file visible in drive")
	}

	if n := len(f.list(t, "starred", 1, 20).Files); n != 0 {
		t.Errorf("trashed file visible in starred")
	}

	if n := len(f.list(t, "recent", 1, 20).Files); n != 0 {
		t.Errorf("trashed file visible in recent")
	}

	trash := f.list(t, "trash", 1, 20).Files
	if len(trash) != 1 || !trash[0].Trashed || trash[0].TrashedAt == nil {
		t.Fatalf("trash view = %+v", trash)
	}

	if !f.blobs.has(rec.StorageKey) {
		t.Error("trash must not touch the blob")
	}

	if err := f.svc.SetTrashed(ctx, rec.ID, false); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Get(ctx, rec.ID)
	if err != nil || got.Trashed || got.TrashedAt != nil || !got.Starred {
		t.Errorf("after restore = %+v, %v", got, err)
	}

	if f.pub.published(queue.TopicFileStarred) != 2 || f.pub.published(queue.TopicFileRestored) != 1 {
		t.Errorf("events = %v", f.pub.topics)
	}
}

func TestRecentViewWindow(t *testing.T) {
	now := time.Now().UTC()
	f := newFixture(t, service.WithClock(func() time.Time { return now.Add(31 * 24 * time.Hour) }))

	f.upload(t, "old.txt", "text/plain", "x")

	if n := len(f.list(t, "recent", 1, 20).Files); n != 0 {
		t.Errorf("file older than the window is in recent")
	}

	if n := len(f.list(t, "drive", 1, 20).Files); n != 1 {
		t.Errorf("drive view = %d", n)
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checks := map[string]error{
		"star":     f.svc.SetStarred(ctx, 999, true),
		"trash":    f.svc.SetTrashed(ctx, 999, true),
		"purge":    f.svc.PurgeForever(ctx, 999),
		"download": func() error { _, err := f.svc.GetDownloadLink(ctx, 999); return err }(),
		"get":      func() error { _, err := f.svc.Get(ctx, 999); return err }(),
	}

	for op, err := range checks {
		if !errors.Is(err, service.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", op, err)
		}
	}
}

func TestPurgeIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.upload(t, "a.txt", "text/plain", "hello")

	if err := f.svc.PurgeForever(ctx, rec.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if f.blobs.has(rec.StorageKey) {
		t.Error("blob still present")
	}

	if _, err := f.svc.GetDownloadLink(ctx, rec.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("download after purge: %v", err)
	}

	if err := f.svc.SetStarred(ctx, rec.ID, true); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("star after purge: %v", err)
	}

	if err := f.svc.PurgeForever(ctx, rec.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("second purge: %v", err)
	}

	if f.pub.published(queue.TopicFilePurged) != 1 {
		t.Error("purged event not published")
	}
}

func TestPurgeBlobFailureKeepsRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.upload(t, "a.txt", "text/plain", "hello")

	f.blobs.deleteErr[rec.StorageKey] = errors.New("access denied")

	if err := f.svc.PurgeForever(ctx, rec.ID); !errors.Is(err, service.ErrStorageDelete) {
		t.Fatalf("err = %v, want ErrStorageDelete", err)
	}

	if _, err := f.svc.Get(ctx, rec.ID); err != nil {
		t.Errorf("row must remain after blob delete failure: %v", err)
	}
}

func TestDownloadLink(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "a.txt", "text/plain", "hello")

	link, err := f.svc.GetDownloadLink(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(link.DownloadURL, rec.StorageKey) || link.FileName != "a.txt" || link.ContentType != "text/plain" {
		t.Errorf("link = %+v", link)
	}

	if link.ExpiresIn != 3600 {
		t.Errorf("expiresIn = %d", link.ExpiresIn)
	}

	if f.blobs.lastTTL != time.Hour || f.blobs.lastName != "a.txt" {
		t.Errorf("signed with ttl=%s name=%q", f.blobs.lastTTL, f.blobs.lastName)
	}
}

func TestDownloadLinkCache(t *testing.T) {
	kvStore, err := kv.NewKVStore(context.Background(), configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatal(err)
	}

	links := cache.New(kvStore, "dl")
	f := newFixture(t, service.WithLinkCache(links))
	ctx := context.Background()
	rec := f.upload(t, "a.txt", "text/plain", "hello")

	first, err := f.svc.GetDownloadLink(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}

	second, err := f.svc.GetDownloadLink(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}

	if f.blobs.signCalls != 1 || first.DownloadURL != second.DownloadURL {
		t.Errorf("signCalls = %d, urls %q %q", f.blobs.signCalls, first.DownloadURL, second.DownloadURL)
	}

	if err := f.svc.PurgeForever(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Get[map[string]any](ctx, links, rec.StorageKey); !errors.Is(err, cache.ErrMiss) {
		t.Errorf("purge must drop the cached link, got %v", err)
	}
}

func TestDownloadLinkWithoutCacheSignsEveryTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.upload(t, "a.txt", "text/plain", "hello")

	for range 3 {
		if _, err := f.svc.GetDownloadLink(ctx, rec.ID); err != nil {
			t.Fatal(err)
		}
	}

	if f.blobs.signCalls != 3 {
		t.Errorf("signCalls = %d, want 3", f.blobs.signCalls)
	}
}

func TestDownloadLinkSignFailureIsNotCacheError(t *testing.T) {
	kvStore, err := kv.NewKVStore(context.Background(), configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatal(err)
	}

	links := cache.New(kvStore, "dl", cache.WithErrorHandler(service.ObserveLinkCacheError))
	f := newFixture(t, service.WithLinkCache(links))
	ctx := context.Background()
	rec := f.upload(t, "a.txt", "text/plain", "hello")

	f.blobs.signErr = errors.New("signer down")
	before := testutil.ToFloat64(metrics.LinkCache.WithLabelValues("error"))

	if _, err := f.svc.GetDownloadLink(ctx, rec.ID); err == nil {
		t.Fatal("expected sign error")
	}

	if after := testutil.ToFloat64(metrics.LinkCache.WithLabelValues("error")); after != before {
		t.Errorf("cache error counter moved %v -> %v on sign failure", before, after)
	}
}

func TestEmptyTrashCollectsFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep := f.upload(t, "keep.txt", "text/plain", "x")
	a := f.upload(t, "a.txt", "text/plain", "x")
	b := f.upload(t, "b.txt", "text/plain", "x")

	for _, id := range []uint{a.ID, b.ID} {
		if err := f.svc.SetTrashed(ctx, id, true); err != nil {
			t.Fatal(err)
		}
	}

	f.blobs.deleteErr[b.StorageKey] = errors.New("locked")

	report, err := f.svc.EmptyTrash(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if report.Purged != 1 || len(report.Failed) != 1 || report.Failed[0].ID != b.ID {
		t.Fatalf("report = %+v", report)
	}

	if _, err := f.svc.Get(ctx, keep.ID); err != nil {
		t.Errorf("active file purged: %v", err)
	}

	if _, err := f.svc.Get(ctx, b.ID); err != nil {
		t.Errorf("failed purge must keep row: %v", err)
	}
}

func TestPurgeTrashedBefore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.upload(t, "a.txt", "text/plain", "x")

	if err := f.svc.SetTrashed(ctx, rec.ID, true); err != nil {
		t.Fatal(err)
	}

	report, err := f.svc.PurgeTrashedBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil || report.Purged != 0 {
		t.Fatalf("early cutoff: %+v, %v", report, err)
	}

	report, err = f.svc.PurgeTrashedBefore(ctx, time.Now().Add(time.Hour))
	if err != nil || report.Purged != 1 {
		t.Fatalf("late cutoff: %+v, %v", report, err)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.upload(t, "a.txt", "text/plain", "hello")
	f.upload(t, "b.txt", "text/plain", "abc")

	_ = f.svc.SetTrashed(ctx, a.ID, true)

	st, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := types.StatsResponse{
		TotalFiles: 2, TotalBytes: 8,
		ActiveFiles: 1, ActiveBytes: 3,
		TrashedFiles: 1, TrashedBytes: 5,
	}
	if *st != want {
		t.Errorf("stats = %+v, want %+v", *st, want)
	}
}
