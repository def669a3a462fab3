package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chen-001/tapirtwins-go/internal/auth"
	"github.com/chen-001/tapirtwins-go/internal/errs"
	"github.com/chen-001/tapirtwins-go/internal/model"
)

// Actor 发起动作的用户
type Actor struct {
	ID   string
	Name string
}

// Engine 审批状态机
// 对 submit/approve/reject 做本地前置校验(能力 + 状态 + 参数),
// 通过后给出下一个记录状态和一条审计历史;任何校验失败都不产生
// 历史条目,也不应发起远端调用
type Engine struct {
	now func() time.Time
}

// New 创建审批引擎,now 为 nil 时使用系统时钟
func New(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Submit 校验打卡提交
// 守卫: 图片数量与任务要求精确相等(先于其它校验,本地快速失败),
// 且用户具备提交能力。通过后返回 submitted 状态的新记录与历史条目;
// 记录 ID 留空,由服务端在写入成功后补齐
func (e *Engine) Submit(actor Actor, task *model.Task, space *model.Space, imageCount int) (*model.TaskRecord, *model.HistoryEvent, error) {
	if imageCount != task.RequiredImages {
		return nil, nil, errs.NewValidation("任务「%s」需要 %d 张图片,实际提供 %d 张", task.Title, task.RequiredImages, imageCount)
	}

	caps := auth.Resolve(actor.ID, task, space)
	if caps.Submit == auth.CapabilityIndeterminate {
		return nil, nil, auth.ErrMembershipNotLoaded
	}
	if !caps.Submit.Granted() {
		return nil, nil, errs.NewAuthorization(fmt.Sprintf("任务「%s」已指定提交人,当前用户无权提交", task.Title))
	}

	now := e.now()
	record := &model.TaskRecord{
		TaskID:        task.ID,
		SubmitterID:   actor.ID,
		SubmitterName: actor.Name,
		Status:        model.RecordStatusSubmitted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	event := e.historyEvent(actor, task.ID, model.ActionSubmit,
		fmt.Sprintf("%s 提交了任务「%s」的打卡", actor.Name, task.Title))
	return record, event, nil
}

// Approve 校验审批通过
// 守卫: 用户具备审批能力,且记录处于 submitted 状态。
// 通过后返回 approved 状态的记录副本与历史条目
func (e *Engine) Approve(actor Actor, task *model.Task, record *model.TaskRecord, space *model.Space, comment string) (*model.TaskRecord, *model.HistoryEvent, error) {
	caps := auth.Resolve(actor.ID, task, space)
	if caps.Approve == auth.CapabilityIndeterminate {
		return nil, nil, auth.ErrMembershipNotLoaded
	}
	if !caps.Approve.Granted() {
		return nil, nil, errs.NewAuthorization(fmt.Sprintf("当前用户无权审批任务「%s」", task.Title))
	}
	if !record.Status.CanTransitionTo(model.RecordStatusApproved) {
		return nil, nil, errs.NewStateConflict("记录状态为 %s,无法审批通过", record.Status)
	}

	next := record.Clone()
	next.Status = model.RecordStatusApproved
	next.ApproverID = actor.ID
	next.ApproverName = actor.Name
	next.UpdatedAt = e.now()

	description := fmt.Sprintf("%s 通过了任务「%s」的打卡", actor.Name, task.Title)
	if comment != "" {
		description += ": " + comment
	}
	event := e.historyEvent(actor, task.ID, model.ActionApprove, description)
	return next, event, nil
}

// Reject 校验审批驳回
// 守卫: 驳回理由非空(先校验),用户具备审批能力,记录处于
// submitted 状态。通过后返回 rejected 状态的记录副本与历史条目;
// 驳回后允许重新提交,产生新的记录
func (e *Engine) Reject(actor Actor, task *model.Task, record *model.TaskRecord, space *model.Space, reason string) (*model.TaskRecord, *model.HistoryEvent, error) {
	if reason == "" {
		return nil, nil, errs.NewValidation("驳回理由不能为空")
	}

	caps := auth.Resolve(actor.ID, task, space)
	if caps.Approve == auth.CapabilityIndeterminate {
		return nil, nil, auth.ErrMembershipNotLoaded
	}
	if !caps.Approve.Granted() {
		return nil, nil, errs.NewAuthorization(fmt.Sprintf("当前用户无权审批任务「%s」", task.Title))
	}
	if !record.Status.CanTransitionTo(model.RecordStatusRejected) {
		return nil, nil, errs.NewStateConflict("记录状态为 %s,无法驳回", record.Status)
	}

	next := record.Clone()
	next.Status = model.RecordStatusRejected
	next.ApproverID = actor.ID
	next.ApproverName = actor.Name
	next.RejectionReason = reason
	next.UpdatedAt = e.now()

	event := e.historyEvent(actor, task.ID, model.ActionReject,
		fmt.Sprintf("%s 驳回了任务「%s」的打卡: %s", actor.Name, task.Title, reason))
	return next, event, nil
}

func (e *Engine) historyEvent(actor Actor, taskID string, action model.ActionKind, description string) *model.HistoryEvent {
	return &model.HistoryEvent{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		Description: description,
		UserName:    actor.Name,
		Action:      action,
		CreatedAt:   e.now(),
	}
}
