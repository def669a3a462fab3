package model

import (
	"errors"
	"time"
)

// Task 共享空间中的打卡任务
// SpaceID 为空表示个人任务;指定了 AssignedSubmitterID 时仅该成员可提交,
// 指定了 AssignedApproverIDs 时仅列表中的成员可审批
type Task struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description,omitempty"`
	DueDate             *time.Time   `json:"due_date,omitempty"`
	RequiredImages      int          `json:"required_images"`
	SpaceID             string       `json:"space_id,omitempty"`
	AssignedSubmitterID string       `json:"assigned_submitter_id,omitempty"`
	AssignedApproverIDs []string     `json:"assigned_approver_ids,omitempty"`
	Status              RecordStatus `json:"status,omitempty"`
	CompletedToday      bool         `json:"completed_today"`
	CreatedBy           string       `json:"created_by,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// IsPersonal 判断是否为个人任务(未归属任何空间)
func (t *Task) IsPersonal() bool {
	return t.SpaceID == ""
}

// IsAssignedApprover 判断用户是否在指定审批人列表中
func (t *Task) IsAssignedApprover(userID string) bool {
	for _, id := range t.AssignedApproverIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Validate 验证任务
func (t *Task) Validate() error {
	if t.ID == "" {
		return errors.New("task ID is required")
	}
	if t.Title == "" {
		return errors.New("task title is required")
	}
	if t.RequiredImages < 1 {
		return errors.New("required image count must be at least 1")
	}
	return nil
}
