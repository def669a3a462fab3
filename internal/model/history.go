package model

import (
	"errors"
	"time"
)

// ActionKind 审批动作类型
type ActionKind string

const (
	ActionSubmit  ActionKind = "submit"
	ActionApprove ActionKind = "approve"
	ActionReject  ActionKind = "reject"
)

// Valid 判断动作类型是否合法
func (a ActionKind) Valid() bool {
	switch a {
	case ActionSubmit, ActionApprove, ActionReject:
		return true
	}
	return false
}

// HistoryEvent 审计历史条目,只追加、不修改、不删除
type HistoryEvent struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	Description string     `json:"description"`
	UserName    string     `json:"user_name"`
	Action      ActionKind `json:"action"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate 验证历史条目
func (e *HistoryEvent) Validate() error {
	if e.TaskID == "" {
		return errors.New("task ID is required")
	}
	if !e.Action.Valid() {
		return errors.New("action kind is invalid")
	}
	if e.UserName == "" {
		return errors.New("acting user name is required")
	}
	return nil
}
