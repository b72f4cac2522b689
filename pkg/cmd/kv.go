package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/clouddrive/pkg/configs"
	kv "github.com/yeisme/clouddrive/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "link cache (key-value) backends",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list registered kv backends, * marks the configured one",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			current := configs.GetConfig().KV.Type

			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), marker(t == current), t)
			}
		},
	}
)

// marker 列表中标记当前配置项.
func marker(selected bool) string {
	if selected {
		return "*"
	}

	return " "
}

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvListCmd)
}
