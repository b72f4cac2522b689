package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultMaxUploadMB        = 100 // 单文件上传上限（MiB）
	DefaultPageSize           = 20  // 列表默认每页条数
	DefaultMaxPageSize        = 100 // 列表每页条数上限
	DefaultRecentDays         = 30  // 最近视图的时间窗口（天）
	DefaultTrashRetentionDays = 30  // 回收站保留天数，0 表示不自动清理
)

// DefaultAllowedMIMEPrefixes 允许上传的 MIME 类型前缀.
var DefaultAllowedMIMEPrefixes = []string{"image/", "video/", "audio/", "application/", "text/"}

// DriveConfig 网盘业务配置.
type DriveConfig struct {
	MaxUploadMB         int64    `mapstructure:"max_upload_mb"         rule:"min=1"`
	AllowedMIMEPrefixes []string `mapstructure:"allowed_mime_prefixes" rule:"min=1,dive,mimeprefix"`
	DefaultPageSize     int      `mapstructure:"default_page_size"     rule:"min=1,ltefield=MaxPageSize"`
	MaxPageSize         int      `mapstructure:"max_page_size"         rule:"min=1"`
	RecentDays          int      `mapstructure:"recent_days"           rule:"min=1"`
	TrashRetentionDays  int      `mapstructure:"trash_retention_days"  rule:"min=0"`
	LinkCache           bool     `mapstructure:"link_cache"`
}

// MaxUploadBytes 返回单文件上传上限（字节）.
func (c *DriveConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// RecentWindow 返回最近视图的时间窗口.
func (c *DriveConfig) RecentWindow() time.Duration {
	return time.Duration(c.RecentDays) * 24 * time.Hour
}

// TrashRetention 返回回收站保留时长，0 表示不自动清理.
func (c *DriveConfig) TrashRetention() time.Duration {
	return time.Duration(c.TrashRetentionDays) * 24 * time.Hour
}

func (c *DriveConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("drive.max_upload_mb", DefaultMaxUploadMB)
	v.SetDefault("drive.allowed_mime_prefixes", DefaultAllowedMIMEPrefixes)
	v.SetDefault("drive.default_page_size", DefaultPageSize)
	v.SetDefault("drive.max_page_size", DefaultMaxPageSize)
	v.SetDefault("drive.recent_days", DefaultRecentDays)
	v.SetDefault("drive.trash_retention_days", DefaultTrashRetentionDays)
	v.SetDefault("drive.link_cache", true)
}
