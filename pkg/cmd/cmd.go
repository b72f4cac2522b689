// Package cmd 提供 clouddrive 的命令行入口.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/clouddrive/pkg/app"
	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/log"
)

var (
	// configPath 配置文件或所在目录.
	configPath string
	// debug 打印更多调试信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:           "clouddrive",
		Short:         "A single-user personal cloud drive",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			cfg := configs.GetConfig()

			return log.Init(cfg.Log, cfg.Server.Debug || debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Close()
		},
		RunE: serve,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		RunE:  serve,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "clouddrive", configs.AppVersion)
		},
	}
)

func serve(cmd *cobra.Command, args []string) error {
	cfg := configs.GetConfig()

	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}

	return a.Run()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	rootCmd.AddCommand(serveCmd, versionCmd)

	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
