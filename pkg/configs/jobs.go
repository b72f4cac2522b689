package configs

import "github.com/spf13/viper"

// JobsConfig 定时任务配置.
type JobsConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	TrashRetentionCron string `mapstructure:"trash_retention_cron" rule:"required"`
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.trash_retention_cron", "0 3 * * *")
}
