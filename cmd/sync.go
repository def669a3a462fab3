/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/container"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the latest tasks and records from the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("synced %d tasks, %d records due today\n", len(svc.Tasks()), len(svc.TodayRecords()))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
