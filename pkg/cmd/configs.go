package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/clouddrive/pkg/configs"
)

// secretMask 打印配置时替换敏感字段.
const secretMask = "******"

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "config subcommands",
	}

	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the current config file",
		Run: func(cmd *cobra.Command, args []string) {
			v := configs.GetViper()
			if v == nil || v.ConfigFileUsed() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and CLOUDDRIVE_* env only)")
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), v.ConfigFileUsed())
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "print the effective config with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if v := configs.GetViper(); v != nil {
					v.Debug()
				}
			}

			b, err := sonic.ConfigStd.MarshalIndent(maskSecrets(configs.GetConfig()), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// maskSecrets 返回隐藏了口令与令牌的配置副本.
func maskSecrets(cfg *configs.AppConfig) *configs.AppConfig {
	out := *cfg

	for _, s := range []*string{
		&out.DB.Password,
		&out.S3.SecretAccessKey,
		&out.KV.Redis.Password,
		&out.KV.NATS.Password,
		&out.MQ.Redis.Password,
		&out.MQ.NATS.Password,
		&out.MQ.NATS.JWT,
		&out.MQ.NATS.NKey,
		&out.Auth.Token,
	} {
		if *s != "" {
			*s = secretMask
		}
	}

	return &out
}

// registerConfigsCommands 注册 CLI 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(pathCmd, debugCmd)

	rootCmd.AddCommand(configCmd)
}
