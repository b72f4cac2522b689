// Package model 定义持久化到元数据库的实体.
package model

import (
	"time"
)

// File 文件元数据记录，字节内容保存在对象存储中，通过 StorageKey 关联.
// Trashed 为软删除标记，彻底删除时记录与对象一并移除.
type File struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string     `gorm:"size:512;not null"               json:"name"`
	Size        int64      `gorm:"not null"                        json:"size"`
	ContentType string     `gorm:"size:255;not null"               json:"contentType"`
	StorageKey  string     `gorm:"size:512;not null;uniqueIndex"   json:"-"`
	Checksum    string     `gorm:"size:32"                         json:"checksum"`
	Starred     bool       `gorm:"not null;default:false;index"    json:"starred"`
	Trashed     bool       `gorm:"not null;default:false;index"    json:"trashed"`
	TrashedAt   *time.Time `gorm:"index"                           json:"trashedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"index"                           json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName 指定表名.
func (File) TableName() string {
	return "files"
}

// Models 返回需要自动迁移的模型.
func Models() []any {
	return []any{&File{}}
}
