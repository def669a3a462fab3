/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/config"
	"github.com/chen-001/tapirtwins-go/internal/database"
	"github.com/chen-001/tapirtwins-go/internal/logging"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local database",
	Long: `Initialize the local settings database.
This command creates the local SQLite database and migrates its schema.
It is safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// 2. 打开本地数据库
		logger := logging.GetLogger()
		logger.WithField("path", cfg.Database.Path).Info("opening local database")
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open local database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		// 3. 执行迁移
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		logger.Info("local database initialized")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
