/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/config"
	"github.com/chen-001/tapirtwins-go/internal/container"
)

// withContainer 加载配置、构建容器并执行回调,退出时清理资源
func withContainer(cmd *cobra.Command, fn func(ctr *container.Container) error) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctr, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer ctr.Close()

	return fn(ctr)
}
