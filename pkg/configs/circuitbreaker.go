package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CircuitBreakerConfig 熔断器配置，5xx 响应计为失败.
type CircuitBreakerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	FailureRate       float64       `mapstructure:"failure_rate"         rule:"min=0,max=1"`
	MinRequests       uint32        `mapstructure:"min_requests"         rule:"min=1"`
	Interval          time.Duration `mapstructure:"interval"`             // 统计窗口，0 表示不清零
	OpenTimeout       time.Duration `mapstructure:"open_timeout"`         // 打开状态持续时间
	MaxRequestsInHalf uint32        `mapstructure:"max_requests_in_half"` // 半开状态允许的请求数
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.open_timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.max_requests_in_half", 5)
}
