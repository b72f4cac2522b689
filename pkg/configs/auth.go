package configs

import "github.com/spf13/viper"

// AuthConfig 单用户身份校验（支持 oauth2-proxy 注入的请求头或静态令牌）.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`                              // 开启认证校验
	AllowedEmail  string   `mapstructure:"allowed_email" rule:"omitempty,email"` // 唯一允许的身份
	Token         string   `mapstructure:"token"`                                // Bearer 令牌
	SkipPaths     []string `mapstructure:"skip_paths"`                           // 跳过认证的路径前缀
	DevAllowQuery bool     `mapstructure:"dev_allow_query"`                      // 调试模式允许 ?token=
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.allowed_email", "")
	v.SetDefault("auth.token", "")
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/api/health",
	})
}
