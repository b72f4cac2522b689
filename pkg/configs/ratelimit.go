package configs

import (
	"strings"

	"github.com/spf13/viper"
)

// RateLimitConfig 速率限制配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"gt=0"` // 每秒允许的请求数
	Burst   int     `mapstructure:"burst" rule:"min=1"`
	// Key 选择限流维度：global、ip、header:Header-Name
	Key string `mapstructure:"key" rule:"required"`
	// UploadRPS 上传接口单独的速率，0 表示沿用 RPS
	UploadRPS float64 `mapstructure:"upload_rps" rule:"min=0"`
}

// HeaderKey 当 Key 形如 header:X-Name 时返回请求头名.
func (c *RateLimitConfig) HeaderKey() (string, bool) {
	name, ok := strings.CutPrefix(c.Key, "header:")
	if !ok || name == "" {
		return "", false
	}

	return name, true
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.key", "ip")
	v.SetDefault("rate_limit.upload_rps", 2.0)
}
