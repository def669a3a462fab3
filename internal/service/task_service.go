package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chen-001/tapirtwins-go/internal/api"
	"github.com/chen-001/tapirtwins-go/internal/auth"
	"github.com/chen-001/tapirtwins-go/internal/engine"
	"github.com/chen-001/tapirtwins-go/internal/errs"
	"github.com/chen-001/tapirtwins-go/internal/metrics"
	"github.com/chen-001/tapirtwins-go/internal/model"
	"github.com/chen-001/tapirtwins-go/internal/settings"
	"github.com/chen-001/tapirtwins-go/internal/store"
	syncpkg "github.com/chen-001/tapirtwins-go/internal/sync"
)

// TaskService 任务工作流服务接口
// 每个动作对调用方呈现单一结果;写入成功后的回读对账在后台
// 进行,只通过最终的存储内容可见
type TaskService interface {
	Refresh(ctx context.Context) error
	Tasks() []*model.Task
	TodayRecords() []*model.TaskRecord
	Records(taskID string) []*model.TaskRecord
	Create(ctx context.Context, req *CreateTaskRequest) (*model.Task, error)
	Update(ctx context.Context, id string, req *UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, taskID string, images [][]byte) (*model.TaskRecord, error)
	Approve(ctx context.Context, recordID string, comment string) error
	Reject(ctx context.Context, recordID string, reason string) error
	History(ctx context.Context, taskID string) ([]*model.HistoryEvent, error)
	Space(ctx context.Context, spaceID string) (*model.Space, error)
	Dreams(ctx context.Context) ([]model.Dream, error)
	Close()
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	RequiredImages      int        `json:"required_images"`
	SpaceID             string     `json:"space_id,omitempty"`
	AssignedSubmitterID string     `json:"assigned_submitter_id,omitempty"`
	AssignedApproverIDs []string   `json:"assigned_approver_ids,omitempty"`
}

// Validate 本地校验创建请求
func (r *CreateTaskRequest) Validate() error {
	if r.Title == "" {
		return errs.NewValidation("任务标题不能为空")
	}
	if r.RequiredImages < 1 {
		return errs.NewValidation("任务至少需要 1 张图片")
	}
	return nil
}

// UpdateTaskRequest 更新任务请求
type UpdateTaskRequest struct {
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	RequiredImages      int        `json:"required_images"`
	AssignedSubmitterID string     `json:"assigned_submitter_id,omitempty"`
	AssignedApproverIDs []string   `json:"assigned_approver_ids,omitempty"`
}

type taskService struct {
	api         api.TaskAPI
	engine      *engine.Engine
	creds       auth.CredentialProvider
	tasks       *store.TaskStore
	records     *store.RecordStore
	coordinator *syncpkg.Coordinator
	settings    settings.Repository
	spaces      *spaceCache
	logger      *logrus.Logger

	// 后台回读挂在服务自身的生命周期上,Close 取消后
	// 剩余回读静默放弃
	lifeCtx context.Context
	cancel  context.CancelFunc
}

// NewTaskService 创建任务工作流服务
func NewTaskService(
	client api.TaskAPI,
	eng *engine.Engine,
	creds auth.CredentialProvider,
	tasks *store.TaskStore,
	records *store.RecordStore,
	coordinator *syncpkg.Coordinator,
	settingsRepo settings.Repository,
	logger *logrus.Logger,
) TaskService {
	ctx, cancel := context.WithCancel(context.Background())
	return &taskService{
		api:         client,
		engine:      eng,
		creds:       creds,
		tasks:       tasks,
		records:     records,
		coordinator: coordinator,
		settings:    settingsRepo,
		spaces:      newSpaceCache(client),
		logger:      logger,
		lifeCtx:     ctx,
		cancel:      cancel,
	}
}

// Close 结束服务,放弃所有未完成的后台回读
func (s *taskService) Close() {
	s.cancel()
}

// Refresh 拉取个人与默认空间的任务和记录并替换本地存储
func (s *taskService) Refresh(ctx context.Context) error {
	tasks, records, err := s.fetchAll(ctx)
	if err != nil {
		return err
	}
	s.tasks.Replace(tasks)
	s.records.Replace(records)

	if s.settings != nil {
		if err := s.settings.SetLastSyncAt(s.coordinator.Clock().Now()); err != nil {
			s.logger.WithError(err).Warn("failed to persist last sync time")
		}
	}
	return nil
}

// Tasks 返回当前任务快照(已按展示顺序排序)
func (s *taskService) Tasks() []*model.Task {
	return s.tasks.Tasks()
}

// TodayRecords 返回今日打卡记录
func (s *taskService) TodayRecords() []*model.TaskRecord {
	return s.records.Today(s.coordinator.Clock().Now())
}

// Records 返回指定任务的打卡记录
func (s *taskService) Records(taskID string) []*model.TaskRecord {
	return s.records.ByTask(taskID)
}

// Create 创建任务
// 解码失败时按最小负载降级重试一次: 剥离指派字段后重发。
// 这是针对指派字段线格式不稳定的一次性降级,仅由明确的
// 解码错误触发
func (s *taskService) Create(ctx context.Context, req *CreateTaskRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	input := &api.TaskInput{
		Title:               req.Title,
		Description:         req.Description,
		DueDate:             req.DueDate,
		RequiredImages:      req.RequiredImages,
		SpaceID:             req.SpaceID,
		AssignedSubmitterID: req.AssignedSubmitterID,
		AssignedApproverIDs: req.AssignedApproverIDs,
	}

	task, err := s.api.CreateTask(ctx, input)
	if errs.IsDecoding(err) {
		s.logger.WithError(err).Warn("create response undecodable, retrying with simplified payload")
		task, err = s.api.CreateTask(ctx, input.Simplified())
	}
	if err != nil {
		return nil, err
	}

	s.reconcileAfterWrite(nil)
	return task, nil
}

// Update 更新任务
func (s *taskService) Update(ctx context.Context, id string, req *UpdateTaskRequest) (*model.Task, error) {
	if req.Title == "" {
		return nil, errs.NewValidation("任务标题不能为空")
	}
	if req.RequiredImages < 1 {
		return nil, errs.NewValidation("任务至少需要 1 张图片")
	}

	input := &api.TaskInput{
		Title:               req.Title,
		Description:         req.Description,
		DueDate:             req.DueDate,
		RequiredImages:      req.RequiredImages,
		AssignedSubmitterID: req.AssignedSubmitterID,
		AssignedApproverIDs: req.AssignedApproverIDs,
	}
	task, err := s.api.UpdateTask(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.reconcileAfterWrite(nil)
	return task, nil
}

// Delete 删除任务
// 任务从列表中移除,但历史打卡记录保留用于审计
func (s *taskService) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.tasks.Remove(id)
	s.reconcileAfterWrite(nil)
	return nil
}

// Submit 提交打卡
func (s *taskService) Submit(ctx context.Context, taskID string, images [][]byte) (*model.TaskRecord, error) {
	task, err := s.lookupTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	actor := s.actorFor(ctx, task)
	_, event, err := s.validate(ctx, task, func(space *model.Space) (*model.TaskRecord, *model.HistoryEvent, error) {
		return s.engine.Submit(actor, task, space, len(images))
	})
	if err != nil {
		return nil, err
	}

	// 写入只发起一次,失败原样返回给调用方
	record, err := s.api.SubmitTask(ctx, taskID, images)
	if err != nil {
		return nil, err
	}

	s.records.Apply(record)
	s.records.AppendHistory(event)
	metrics.RecordApprovalAction(string(model.ActionSubmit))

	s.reconcileAfterWrite(func(_ []*model.Task, records []*model.TaskRecord) bool {
		return recordHasStatus(records, record.ID, model.RecordStatusSubmitted)
	})
	return record, nil
}

// Approve 审批通过
func (s *taskService) Approve(ctx context.Context, recordID string, comment string) error {
	record, task, err := s.lookupRecord(ctx, recordID)
	if err != nil {
		return err
	}

	actor := s.actorFor(ctx, task)
	next, event, err := s.validate(ctx, task, func(space *model.Space) (*model.TaskRecord, *model.HistoryEvent, error) {
		return s.engine.Approve(actor, task, record, space, comment)
	})
	if err != nil {
		return err
	}

	result, err := s.api.ApproveRecord(ctx, task.SpaceID, recordID, comment)
	if err != nil {
		return err
	}

	s.records.Apply(next)
	// 服务端返回了权威历史条目时优先使用
	if result.History != nil {
		event = result.History
	}
	s.records.AppendHistory(event)
	metrics.RecordApprovalAction(string(model.ActionApprove))

	s.reconcileAfterWrite(func(_ []*model.Task, records []*model.TaskRecord) bool {
		return recordHasStatus(records, recordID, model.RecordStatusApproved)
	})
	return nil
}

// Reject 审批驳回
func (s *taskService) Reject(ctx context.Context, recordID string, reason string) error {
	record, task, err := s.lookupRecord(ctx, recordID)
	if err != nil {
		return err
	}

	actor := s.actorFor(ctx, task)
	next, event, err := s.validate(ctx, task, func(space *model.Space) (*model.TaskRecord, *model.HistoryEvent, error) {
		return s.engine.Reject(actor, task, record, space, reason)
	})
	if err != nil {
		return err
	}

	if _, err := s.api.RejectRecord(ctx, task.SpaceID, recordID, reason); err != nil {
		return err
	}

	s.records.Apply(next)
	s.records.AppendHistory(event)
	metrics.RecordApprovalAction(string(model.ActionReject))

	s.reconcileAfterWrite(func(_ []*model.Task, records []*model.TaskRecord) bool {
		return recordHasStatus(records, recordID, model.RecordStatusRejected)
	})
	return nil
}

// History 获取任务的审批历史,最新的在前
func (s *taskService) History(ctx context.Context, taskID string) ([]*model.HistoryEvent, error) {
	task, err := s.lookupTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	events, err := s.api.ListHistory(ctx, task.SpaceID, taskID)
	if err != nil {
		return nil, err
	}
	s.records.ReplaceHistory(events)
	return s.records.History(), nil
}

// Space 获取空间详情(成员与角色),结果进入本地缓存
func (s *taskService) Space(ctx context.Context, spaceID string) (*model.Space, error) {
	if spaceID == "" {
		return nil, errs.NewValidation("空间 ID 不能为空")
	}
	return s.spaces.fetch(ctx, spaceID)
}

// Dreams 获取合并后的梦境列表
// 个人条目与默认空间条目按 (标题, 日期) 精确匹配去重
func (s *taskService) Dreams(ctx context.Context) ([]model.Dream, error) {
	personal, err := s.api.ListDreams(ctx, api.PersonalScope())
	if err != nil {
		return nil, err
	}

	spaceID := s.defaultSpaceID()
	if spaceID == "" {
		return store.MergeWithDefaultSpace(personal, nil), nil
	}

	shared, err := s.api.ListDreams(ctx, api.SpaceScope(spaceID))
	if err != nil {
		return nil, err
	}
	return store.MergeWithDefaultSpace(personal, shared), nil
}

// validate 执行引擎校验,空间成员未加载时拉取空间后重试一次
func (s *taskService) validate(ctx context.Context, task *model.Task, check func(*model.Space) (*model.TaskRecord, *model.HistoryEvent, error)) (*model.TaskRecord, *model.HistoryEvent, error) {
	space := s.spaces.cached(task.SpaceID)
	record, event, err := check(space)
	if errors.Is(err, auth.ErrMembershipNotLoaded) {
		space, err = s.spaces.fetch(ctx, task.SpaceID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load space membership: %w", err)
		}
		record, event, err = check(space)
	}
	return record, event, err
}

// lookupTask 从本地存储查找任务,缺失时刷新一次再找
func (s *taskService) lookupTask(ctx context.Context, taskID string) (*model.Task, error) {
	task := s.tasks.Get(taskID)
	if task == nil {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		task = s.tasks.Get(taskID)
	}
	if task == nil {
		return nil, errs.NewStateConflict("任务 %s 不存在", taskID)
	}
	return task, nil
}

// lookupRecord 查找记录及其所属任务
func (s *taskService) lookupRecord(ctx context.Context, recordID string) (*model.TaskRecord, *model.Task, error) {
	record := s.records.Get(recordID)
	if record == nil {
		if err := s.Refresh(ctx); err != nil {
			return nil, nil, err
		}
		record = s.records.Get(recordID)
	}
	if record == nil {
		return nil, nil, errs.NewStateConflict("打卡记录 %s 不存在", recordID)
	}
	task, err := s.lookupTask(ctx, record.TaskID)
	if err != nil {
		return nil, nil, err
	}
	return record, task, nil
}

// actorFor 构造当前用户的动作主体,展示名优先取空间成员名
func (s *taskService) actorFor(ctx context.Context, task *model.Task) engine.Actor {
	userID := s.creds.UserID()
	actor := engine.Actor{ID: userID, Name: userID}
	if space := s.spaces.cached(task.SpaceID); space != nil {
		if member := space.Member(userID); member != nil && member.Username != "" {
			actor.Name = member.Username
		}
	}
	return actor
}

// reconcileAfterWrite 调度写后的后台回读
func (s *taskService) reconcileAfterWrite(until syncpkg.Predicate) {
	s.coordinator.ReconcileAsync(s.lifeCtx, s.fetchAll, until)
}

// fetchAll 拉取个人与默认空间的权威任务与记录集合
func (s *taskService) fetchAll(ctx context.Context) ([]*model.Task, []*model.TaskRecord, error) {
	personalTasks, err := s.api.ListTasks(ctx, api.PersonalScope())
	if err != nil {
		return nil, nil, err
	}
	personalRecords, err := s.api.ListRecords(ctx, api.PersonalScope(), "")
	if err != nil {
		return nil, nil, err
	}

	spaceID := s.defaultSpaceID()
	if spaceID == "" {
		return personalTasks, personalRecords, nil
	}

	spaceTasks, err := s.api.ListTasks(ctx, api.SpaceScope(spaceID))
	if err != nil {
		return nil, nil, err
	}
	spaceRecords, err := s.api.ListRecords(ctx, api.SpaceScope(spaceID), "")
	if err != nil {
		return nil, nil, err
	}

	tasks := store.MergePersonalAndSpace(personalTasks, spaceTasks)
	records := append(personalRecords, spaceRecords...)
	return tasks, records, nil
}

func (s *taskService) defaultSpaceID() string {
	if s.settings == nil {
		return ""
	}
	spaceID, err := s.settings.DefaultSpaceID()
	if err != nil {
		s.logger.WithError(err).Warn("failed to read default space setting")
		return ""
	}
	return spaceID
}

// recordHasStatus 判断拉取结果中指定记录是否已达到目标状态
func recordHasStatus(records []*model.TaskRecord, recordID string, status model.RecordStatus) bool {
	for _, r := range records {
		if r.ID == recordID {
			return r.Status == status
		}
	}
	return false
}
