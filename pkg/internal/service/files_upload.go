package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/oklog/ulid"

	ctxPkg "github.com/yeisme/clouddrive/pkg/context"
	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/queue"
	"github.com/yeisme/clouddrive/pkg/rule"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// maxKeyNameRunes 对象键中保留的文件名最大长度.
const maxKeyNameRunes = 100

// 与 model.File 列宽一致的上限（按字符计）.
const (
	maxNameRunes        = 512
	maxContentTypeRunes = 255
)

var (
	fileNameRule    = fmt.Sprintf("filename,max=%d", maxNameRunes)
	contentTypeRule = fmt.Sprintf("max=%d", maxContentTypeRunes)
)

// Upload 校验并保存一个文件：先写对象，再写元数据记录.
func (s *FileService) Upload(ctx context.Context, in types.UploadInput) (_ *model.File, err error) {
	ctx, span := tracing.StartSpan(ctx, "FileService.Upload")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		metrics.ObserveFileOp(metrics.OpUpload, err)
	}()

	l := ctxPkg.Logger(ctx)

	name := strings.TrimSpace(in.Name)
	contentType := strings.TrimSpace(in.ContentType)

	if err := s.validateUpload(name, contentType, in.Size); err != nil {
		return nil, err
	}

	key := s.newStorageKey(name)
	hasher := xxhash.New()

	if err := s.blobs.Put(ctx, key, io.TeeReader(in.Body, hasher), in.Size, contentType); err != nil {
		l.Error().Err(err).Str("storage_key", key).Msg("对象写入失败")

		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	rec := &model.File{
		Name:        name,
		Size:        in.Size,
		ContentType: contentType,
		StorageKey:  key,
		Checksum:    fmt.Sprintf("%016x", hasher.Sum64()),
	}

	if err := s.meta.Insert(ctx, rec); err != nil {
		s.reportOrphan(ctx, rec, err)

		return nil, fmt.Errorf("%w: %w", ErrMetadataWrite, err)
	}

	metrics.UploadedBytes.Add(float64(rec.Size))
	l.Info().Uint("id", rec.ID).Str("name", rec.Name).Int64("size", rec.Size).Msg("文件已上传")

	s.publishFile(ctx, queue.TopicFileUploaded, rec, "api")

	return rec, nil
}

// validateUpload 检查文件名、大小与类型.
func (s *FileService) validateUpload(name, contentType string, size int64) error {
	if err := rule.ValidateVar(name, fileNameRule); err != nil {
		return fmt.Errorf("%w: invalid file name", ErrValidation)
	}

	if err := rule.ValidateVar(contentType, contentTypeRule); err != nil {
		return fmt.Errorf("%w: content type too long", ErrValidation)
	}

	if size < 0 {
		return fmt.Errorf("%w: negative size", ErrValidation)
	}

	if size > s.opts.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrTooLarge, size, s.opts.MaxUploadBytes)
	}

	if !s.allowedType(contentType) {
		return fmt.Errorf("%w: content type %q is not allowed", ErrValidation, contentType)
	}

	return nil
}

// allowedType 判断 MIME 类型是否以允许的前缀开头（不区分大小写）.
func (s *FileService) allowedType(contentType string) bool {
	ct := strings.ToLower(contentType)

	for _, prefix := range s.opts.AllowedMIMEPrefixes {
		if strings.HasPrefix(ct, prefix) && len(ct) > len(prefix) {
			return true
		}
	}

	return false
}

// newStorageKey 生成对象键：<prefix>/YYYY/MM/<ULID>-<文件名>.
func (s *FileService) newStorageKey(name string) string {
	now := s.now()

	s.entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		// 同一毫秒内单调序列溢出，重置熵源
		s.entropy = ulid.Monotonic(rand.Reader, 0)
		id = ulid.MustNew(ulid.Timestamp(now), s.entropy)
	}
	s.entropyMu.Unlock()

	return path.Join(
		s.opts.KeyPrefix,
		now.Format("2006"),
		now.Format("01"),
		id.String()+"-"+sanitizeKeyName(name),
	)
}

// sanitizeKeyName 把文件名转换为对象键安全的形式，显示名保存在记录中不受影响.
func sanitizeKeyName(name string) string {
	var b strings.Builder

	n := 0

	for _, r := range name {
		if n == maxKeyNameRunes {
			break
		}

		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}

		n++
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}

	return out
}

// reportOrphan 记录元数据写入失败后遗留的对象，不做清理.
func (s *FileService) reportOrphan(ctx context.Context, rec *model.File, cause error) {
	metrics.OrphanedBlobs.Inc()

	ctxPkg.Logger(ctx).Error().
		Err(cause).
		Str("storage_key", rec.StorageKey).
		Int64("size", rec.Size).
		Str("name", rec.Name).
		Msg("元数据写入失败，对象成为孤儿")

	if !s.topicEnabled(queue.TopicBlobOrphaned) {
		return
	}

	payload := queue.BlobOrphanedPayload{
		StorageKey:  rec.StorageKey,
		Size:        rec.Size,
		ContentType: rec.ContentType,
		Reason:      cause.Error(),
	}

	if err := queue.PublishBlobOrphaned(s.pub, payload, s.headerOpts(ctx)...); err != nil {
		ctxPkg.Logger(ctx).Warn().Err(err).Str("topic", queue.TopicBlobOrphaned).Msg("事件发布失败")
	}
}
