package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置，指标通过 HTTP 服务的 Path 暴露给 Prometheus.
type MetricsConfig struct {
	Enabled         bool              `mapstructure:"enabled"` // 是否启用Metrics
	Namespace       string            `mapstructure:"namespace"        rule:"required"`
	Path            string            `mapstructure:"path"             rule:"startswith=/"`
	RuntimeMetrics  bool              `mapstructure:"runtime_metrics"`  // 是否收集运行时指标
	DBMetrics       bool              `mapstructure:"db_metrics"`       // 是否启用 gorm prometheus 插件
	MQMetrics       bool              `mapstructure:"mq_metrics"`       // 是否装饰 watermill publisher/subscriber
	Pprof           bool              `mapstructure:"pprof"`            // 是否暴露 /debug/pprof
	RefreshInterval time.Duration     `mapstructure:"refresh_interval"` // 数据库指标刷新间隔
	Labels          map[string]string `mapstructure:"labels"`           // 默认标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "clouddrive")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.db_metrics", true)
	v.SetDefault("metrics.mq_metrics", true)
	v.SetDefault("metrics.refresh_interval", "15s")
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.labels", map[string]string{
		"service": "clouddrive",
	})
}
