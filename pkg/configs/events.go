package configs

import "github.com/spf13/viper"

// EventsConfig 控制文件生命周期事件的发布（全局与分主题）.
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig `mapstructure:"file"`
	Audit   bool             `mapstructure:"audit"` // 是否启动进程内审计消费者
}

// FileEventsConfig 文件领域的事件开关.
type FileEventsConfig struct {
	Uploaded bool `mapstructure:"uploaded"`
	Accessed bool `mapstructure:"accessed"`
	Starred  bool `mapstructure:"starred"`
	Trashed  bool `mapstructure:"trashed"`
	Purged   bool `mapstructure:"purged"`
	Orphaned bool `mapstructure:"orphaned"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.audit", true)

	v.SetDefault("events.file.uploaded", true)
	v.SetDefault("events.file.starred", true)
	v.SetDefault("events.file.trashed", true)
	v.SetDefault("events.file.purged", true)
	v.SetDefault("events.file.orphaned", true)
	// 访问事件量可能很大，默认关闭
	v.SetDefault("events.file.accessed", false)
}
