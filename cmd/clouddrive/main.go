// Package main 启动 clouddrive.
package main

import (
	"os"

	"github.com/yeisme/clouddrive/pkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
