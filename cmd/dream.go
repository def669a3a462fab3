/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/container"
)

// dreamCmd represents the dream command
var dreamCmd = &cobra.Command{
	Use:   "dream",
	Short: "Browse dream journal entries",
}

// dreamListCmd 列出梦境记录
var dreamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List merged personal and default-space dreams, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			dreams, err := ctr.TaskService().Dreams(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range dreams {
				fmt.Printf("%s  %-16s %s\n", d.Date, d.ID, d.Title)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dreamCmd)
	dreamCmd.AddCommand(dreamListCmd)
}
