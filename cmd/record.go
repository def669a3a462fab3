/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/container"
	"github.com/chen-001/tapirtwins-go/internal/model"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Review and approve submitted records",
}

// recordListScope 解析 record list 的查询口径
// 任务参数与 --today 互斥,两者都缺省时列出全部记录
func recordListScope(args []string, todayOnly bool) (string, error) {
	if todayOnly && len(args) > 0 {
		return "", fmt.Errorf("cannot combine a task argument with --today")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", nil
}

// recordListCmd 列出打卡记录
var recordListCmd = &cobra.Command{
	Use:   "list [task-id]",
	Short: "List all records, one task's records, or today's records (--today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		todayOnly, _ := cmd.Flags().GetBool("today")
		taskID, err := recordListScope(args, todayOnly)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			var records []*model.TaskRecord
			switch {
			case todayOnly:
				records = svc.TodayRecords()
			case taskID != "":
				records = svc.Records(taskID)
			default:
				for _, task := range svc.Tasks() {
					records = append(records, svc.Records(task.ID)...)
				}
			}
			for _, r := range records {
				fmt.Printf("%-16s task:%-16s %-10s by %s at %s\n",
					r.ID, r.TaskID, r.Status, r.SubmitterName, r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

// recordApproveCmd 审批通过
var recordApproveCmd = &cobra.Command{
	Use:   "approve <record-id>",
	Short: "Approve a submitted record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, _ := cmd.Flags().GetString("comment")
		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := svc.Approve(cmd.Context(), args[0], comment); err != nil {
				return err
			}
			fmt.Printf("approved record %s\n", args[0])
			return nil
		})
	},
}

// recordRejectCmd 审批驳回
var recordRejectCmd = &cobra.Command{
	Use:   "reject <record-id>",
	Short: "Reject a submitted record (a reason is required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := svc.Reject(cmd.Context(), args[0], reason); err != nil {
				return err
			}
			fmt.Printf("rejected record %s\n", args[0])
			return nil
		})
	},
}

// historyCmd 查看审批历史
var historyCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show the audit history of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}
			events, err := svc.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, e := range events {
				fmt.Printf("%s  %-8s %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Action, e.Description)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(historyCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordApproveCmd)
	recordCmd.AddCommand(recordRejectCmd)

	recordListCmd.Flags().Bool("today", false, "Only show records created today (cannot be combined with a task argument)")
	recordApproveCmd.Flags().String("comment", "", "Approval comment")
	recordRejectCmd.Flags().String("reason", "", "Rejection reason (required)")
}
