// Package store 实现文件元数据表的读写，是列表、筛选与分页的唯一数据来源.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/clouddrive/pkg/internal/model"
)

// ErrNotFound 记录不存在.
var ErrNotFound = errors.New("record not found")

// View 列表视图.
type View string

const (
	ViewDrive   View = "drive"   // 未进入回收站的全部文件
	ViewRecent  View = "recent"  // 最近上传且未进入回收站
	ViewStarred View = "starred" // 已加星且未进入回收站
	ViewTrash   View = "trash"   // 回收站
)

// Views 返回全部合法视图.
func Views() []View {
	return []View{ViewDrive, ViewRecent, ViewStarred, ViewTrash}
}

// ParseView 解析视图名，空字符串视为 drive.
func ParseView(s string) (View, bool) {
	if s == "" {
		return ViewDrive, true
	}

	for _, v := range Views() {
		if string(v) == s {
			return v, true
		}
	}

	return "", false
}

// Filter 列表筛选条件.
type Filter struct {
	View View
	// Since 仅对 recent 视图生效，早于该时间创建的记录被排除
	Since time.Time
}

// Stats 元数据表聚合统计.
type Stats struct {
	TotalFiles   int64 `json:"totalFiles"`
	TotalBytes   int64 `json:"totalBytes"`
	StarredFiles int64 `json:"starredFiles"`
	TrashedFiles int64 `json:"trashedFiles"`
	TrashedBytes int64 `json:"trashedBytes"`
}

// FileStore 基于 gorm 的文件元数据存储.
type FileStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewFileStore 创建 FileStore.
func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Insert 插入新记录，ID 与 CreatedAt 由数据库与 gorm 回填.
func (s *FileStore) Insert(ctx context.Context, f *model.File) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("insert file %q: %w", f.Name, err)
	}

	return nil
}

// Get 按 ID 查询.
func (s *FileStore) Get(ctx context.Context, id uint) (*model.File, error) {
	var f model.File

	err := s.db.WithContext(ctx).First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", id, err)
	}

	return &f, nil
}

// SetStarred 设置加星标记，单条 UPDATE 完成，重复设置同一值视为成功.
func (s *FileStore) SetStarred(ctx context.Context, id uint, starred bool) error {
	return s.update(ctx, id, map[string]any{"starred": starred})
}

// SetTrashed 设置回收站标记；移入时保留首次移入的时间，恢复时清空.
func (s *FileStore) SetTrashed(ctx context.Context, id uint, trashed bool) error {
	if trashed {
		return s.update(ctx, id, map[string]any{
			"trashed":    true,
			"trashed_at": gorm.Expr("COALESCE(trashed_at, ?)", s.now()),
		})
	}

	return s.update(ctx, id, map[string]any{"trashed": false, "trashed_at": nil})
}

func (s *FileStore) update(ctx context.Context, id uint, values map[string]any) error {
	res := s.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update file %d: %w", id, res.Error)
	}

	if res.RowsAffected > 0 {
		return nil
	}

	// 部分驱动对未变化的行返回 0，需要再确认记录是否存在
	return s.exists(ctx, id)
}

func (s *FileStore) exists(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check file %d: %w", id, err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete 物理删除记录.
func (s *FileStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.File{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete file %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// List 按视图筛选，按创建时间倒序（ID 倒序兜底）分页，同时返回筛选后的总数.
func (s *FileStore) List(ctx context.Context, filter Filter, offset, limit int) ([]model.File, int64, error) {
	var total int64
	if err := s.scoped(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	files := make([]model.File, 0, limit)
	if total == 0 || int64(offset) >= total {
		return files, total, nil
	}

	err := s.scoped(ctx, filter).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}

	return files, total, nil
}

// ListTrashed 按 ID 升序返回 afterID 之后的回收站记录，before 非零时只返回早于该时间移入的记录.
func (s *FileStore) ListTrashed(ctx context.Context, before time.Time, afterID uint, limit int) ([]model.File, error) {
	q := s.db.WithContext(ctx).Model(&model.File{}).Where("trashed = ? AND id > ?", true, afterID)
	if !before.IsZero() {
		q = q.Where("trashed_at < ?", before)
	}

	var files []model.File
	if err := q.Order("id ASC").Limit(limit).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list trashed files: %w", err)
	}

	return files, nil
}

// Stats 返回聚合统计.
func (s *FileStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	err := s.db.WithContext(ctx).Model(&model.File{}).Select(
		"COUNT(*) AS total_files, " +
			"COALESCE(SUM(size), 0) AS total_bytes, " +
			"COALESCE(SUM(CASE WHEN starred AND NOT trashed THEN 1 ELSE 0 END), 0) AS starred_files, " +
			"COALESCE(SUM(CASE WHEN trashed THEN 1 ELSE 0 END), 0) AS trashed_files, " +
			"COALESCE(SUM(CASE WHEN trashed THEN size ELSE 0 END), 0) AS trashed_bytes",
	).Scan(&st).Error
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	return st, nil
}

// scoped 构造带视图条件的查询，每次调用返回新的语句.
func (s *FileStore) scoped(ctx context.Context, filter Filter) *gorm.DB {
	return s.db.WithContext(ctx).Model(&model.File{}).Scopes(viewScope(filter))
}

func viewScope(filter Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch filter.View {
		case ViewTrash:
			return db.Where("trashed = ?", true)
		case ViewStarred:
			return db.Where("starred = ? AND trashed = ?", true, false)
		case ViewRecent:
			db = db.Where("trashed = ?", false)
			if !filter.Since.IsZero() {
				db = db.Where("created_at >= ?", filter.Since)
			}

			return db
		default:
			return db.Where("trashed = ?", false)
		}
	}
}
