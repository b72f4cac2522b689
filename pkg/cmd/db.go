package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:   "ls",
		Short: "list registered database dialects, * marks the configured one",
		Run: func(cmd *cobra.Command, args []string) {
			current := configs.GetConfig().DB.Type

			for _, t := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), marker(t == current), t)
			}
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the metadata schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()
			cfg.DB.AutoMigrate = false

			ctx := context.Background()

			client, err := db.New(ctx, cfg.DB, configs.MetricsConfig{})
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Migrate(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbListCmd, dbMigrateCmd)
}
