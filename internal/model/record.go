package model

import (
	"errors"
	"time"
)

// RecordStatus 打卡记录状态
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusSubmitted RecordStatus = "submitted"
	RecordStatusApproved  RecordStatus = "approved"
	RecordStatusRejected  RecordStatus = "rejected"
)

// legalTransitions 记录状态的合法转换表
// approved 是终态;rejected 之后允许重新提交(产生新记录)
var legalTransitions = map[RecordStatus][]RecordStatus{
	RecordStatusPending:   {RecordStatusSubmitted},
	RecordStatusSubmitted: {RecordStatusApproved, RecordStatusRejected},
	RecordStatusRejected:  {RecordStatusSubmitted},
	RecordStatusApproved:  {},
}

// Valid 判断状态值是否合法
func (s RecordStatus) Valid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransitionTo 判断是否允许转换到目标状态
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal 判断是否为终态
func (s RecordStatus) IsTerminal() bool {
	return s == RecordStatusApproved
}

// TaskRecord 一次打卡提交及其审批结果
// 同一任务可能存在多条历史记录,但展示时只有最新一条是活跃记录;
// 记录进入 approved/rejected 后不再修改,重新提交会产生新记录
type TaskRecord struct {
	ID              string       `json:"id"`
	TaskID          string       `json:"task_id"`
	SubmitterID     string       `json:"submitter_id"`
	SubmitterName   string       `json:"submitter_name,omitempty"`
	Status          RecordStatus `json:"status"`
	Images          []string     `json:"images,omitempty"`
	ApproverID      string       `json:"approver_id,omitempty"`
	ApproverName    string       `json:"approver_name,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Clone 返回记录的副本
func (r *TaskRecord) Clone() *TaskRecord {
	c := *r
	c.Images = append([]string(nil), r.Images...)
	return &c
}

// Validate 验证打卡记录
func (r *TaskRecord) Validate() error {
	if r.ID == "" {
		return errors.New("record ID is required")
	}
	if r.TaskID == "" {
		return errors.New("task ID is required")
	}
	if !r.Status.Valid() {
		return errors.New("record status is invalid")
	}
	return nil
}
