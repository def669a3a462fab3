/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/container"
	"github.com/chen-001/tapirtwins-go/internal/service"
)

// taskCmd represents the task command
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

// taskListCmd 列出任务
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks for the current user and the default space",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			for _, t := range svc.Tasks() {
				done := " "
				if t.CompletedToday {
					done = "x"
				}
				due := "-"
				if t.DueDate != nil {
					due = t.DueDate.Format("2006-01-02")
				}
				fmt.Printf("[%s] %-16s due:%-10s images:%d  %s\n", done, t.ID, due, t.RequiredImages, t.Title)
			}
			return nil
		})
	},
}

// taskCreateCmd 创建任务
var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		due, _ := cmd.Flags().GetString("due")
		images, _ := cmd.Flags().GetInt("images")
		spaceID, _ := cmd.Flags().GetString("space")
		submitter, _ := cmd.Flags().GetString("submitter")
		approvers, _ := cmd.Flags().GetStringSlice("approvers")

		req := &service.CreateTaskRequest{
			Title:               args[0],
			Description:         description,
			RequiredImages:      images,
			SpaceID:             spaceID,
			AssignedSubmitterID: submitter,
			AssignedApproverIDs: approvers,
		}
		if due != "" {
			t, err := time.ParseInLocation("2006-01-02", due, time.Local)
			if err != nil {
				return fmt.Errorf("invalid due date %q: %w", due, err)
			}
			req.DueDate = &t
		}

		return withContainer(cmd, func(ctr *container.Container) error {
			task, err := ctr.TaskService().Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("created task %s: %s\n", task.ID, task.Title)
			return nil
		})
	},
}

// taskSubmitCmd 提交打卡
var taskSubmitCmd = &cobra.Command{
	Use:   "submit <task-id> <image>...",
	Short: "Submit proof-of-completion images for a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		images := make([][]byte, 0, len(args)-1)
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read image %q: %w", path, err)
			}
			images = append(images, data)
		}

		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			record, err := svc.Submit(cmd.Context(), args[0], images)
			if err != nil {
				return err
			}
			fmt.Printf("submitted record %s (status: %s)\n", record.ID, record.Status)
			return nil
		})
	},
}

// taskDeleteCmd 删除任务
var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task (historical records are kept for audit)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			if err := ctr.TaskService().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted task %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskSubmitCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	taskCreateCmd.Flags().String("description", "", "Task description")
	taskCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	taskCreateCmd.Flags().Int("images", 1, "Required proof image count")
	taskCreateCmd.Flags().String("space", "", "Owning space ID (empty for a personal task)")
	taskCreateCmd.Flags().String("submitter", "", "Assigned submitter user ID")
	taskCreateCmd.Flags().StringSlice("approvers", nil, "Assigned approver user IDs")
}
