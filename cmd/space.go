/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/container"
)

// spaceCmd represents the space command
var spaceCmd = &cobra.Command{
	Use:   "space",
	Short: "Manage the default shared space",
}

// spaceDefaultCmd 查看或设置默认空间
var spaceDefaultCmd = &cobra.Command{
	Use:   "default [space-id]",
	Short: "Show or set the default space ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			settings := ctr.Settings()
			if len(args) == 1 {
				if err := settings.SetDefaultSpaceID(args[0]); err != nil {
					return err
				}
				fmt.Printf("default space set to %s\n", args[0])
				return nil
			}
			id, err := settings.DefaultSpaceID()
			if err != nil {
				return err
			}
			if id == "" {
				fmt.Println("no default space configured")
				return nil
			}
			fmt.Println(id)
			return nil
		})
	},
}

// spaceShowCmd 展示空间成员与角色
var spaceShowCmd = &cobra.Command{
	Use:   "show <space-id>",
	Short: "Show a space's members and their roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			space, err := ctr.TaskService().Space(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("space %s: %s\n", space.ID, space.Name)
			for _, m := range space.Members {
				fmt.Printf("  %-16s %-10s %s\n", m.UserID, m.Role, m.Username)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(spaceCmd)
	spaceCmd.AddCommand(spaceDefaultCmd)
	spaceCmd.AddCommand(spaceShowCmd)
}
