package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/chen-001/tapirtwins-go/internal/auth"
	"github.com/chen-001/tapirtwins-go/internal/config"
	"github.com/chen-001/tapirtwins-go/internal/errs"
	"github.com/chen-001/tapirtwins-go/internal/metrics"
	"github.com/chen-001/tapirtwins-go/internal/model"
)

// Scope 列表查询范围,SpaceID 为空表示个人范围
type Scope struct {
	SpaceID string
}

// PersonalScope 个人范围
func PersonalScope() Scope { return Scope{} }

// SpaceScope 空间范围
func SpaceScope(spaceID string) Scope { return Scope{SpaceID: spaceID} }

// TaskInput 创建/更新任务的请求参数
type TaskInput struct {
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	RequiredImages      int        `json:"required_images"`
	SpaceID             string     `json:"space_id,omitempty"`
	AssignedSubmitterID string     `json:"assigned_submitter_id,omitempty"`
	AssignedApproverIDs []string   `json:"assigned_approver_ids,omitempty"`
}

// Simplified 返回剥离了指派字段的最小请求
// 解码失败后的一次性降级重试使用
func (in *TaskInput) Simplified() *TaskInput {
	c := *in
	c.AssignedSubmitterID = ""
	c.AssignedApproverIDs = nil
	return &c
}

// ApprovalResult 审批通过的响应
type ApprovalResult struct {
	Message string              `json:"message"`
	History *model.HistoryEvent `json:"history_event,omitempty"`
}

// RejectResult 审批驳回的响应
type RejectResult struct {
	Message string `json:"message"`
}

// TaskAPI 远端任务服务契约
// 所有调用都要求有效的 bearer 凭证,凭证缺失在发起网络请求前
// 即返回权限错误
type TaskAPI interface {
	ListTasks(ctx context.Context, scope Scope) ([]*model.Task, error)
	CreateTask(ctx context.Context, in *TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, in *TaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SubmitTask(ctx context.Context, id string, images [][]byte) (*model.TaskRecord, error)
	ListRecords(ctx context.Context, scope Scope, taskID string) ([]*model.TaskRecord, error)
	ApproveRecord(ctx context.Context, spaceID, recordID, comment string) (*ApprovalResult, error)
	RejectRecord(ctx context.Context, spaceID, recordID, reason string) (*RejectResult, error)
	ListHistory(ctx context.Context, spaceID, taskID string) ([]*model.HistoryEvent, error)
	GetSpace(ctx context.Context, id string) (*model.Space, error)
	ListDreams(ctx context.Context, scope Scope) ([]model.Dream, error)
}

// Client Remote Task API 的 HTTP 客户端实现
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      auth.CredentialProvider
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewClient 创建 API 客户端
func NewClient(cfg *config.Config, creds auth.CredentialProvider, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.Server.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RateLimit.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 20
	}
	return &Client{
		baseURL:    cfg.Server.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		creds:      creds,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger,
	}
}

// ListTasks 获取任务列表
func (c *Client) ListTasks(ctx context.Context, scope Scope) ([]*model.Task, error) {
	path := "/api/v1/tasks"
	if scope.SpaceID != "" {
		path = fmt.Sprintf("/api/v1/spaces/%s/tasks", scope.SpaceID)
	}
	var tasks []*model.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask 创建任务
func (c *Client) CreateTask(ctx context.Context, in *TaskInput) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask 更新任务
func (c *Client) UpdateTask(ctx context.Context, id string, in *TaskInput) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPut, "/api/v1/tasks/"+id, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask 删除任务
// 历史打卡记录保留用于审计,服务端不会级联删除
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+id, nil, nil)
}

// SubmitTask 提交打卡,图片以 multipart 形式上传
func (c *Client) SubmitTask(ctx context.Context, id string, images [][]byte) (*model.TaskRecord, error) {
	if err := c.preflight(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for i, img := range images {
		part, err := writer.CreateFormFile("images", fmt.Sprintf("image-%d.jpg", i))
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	path := fmt.Sprintf("/api/v1/tasks/%s/records", id)
	var record model.TaskRecord
	if err := c.doRaw(ctx, http.MethodPost, path, &buf, writer.FormDataContentType(), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecords 获取打卡记录列表,taskID 为空表示范围内全部记录
func (c *Client) ListRecords(ctx context.Context, scope Scope, taskID string) ([]*model.TaskRecord, error) {
	path := "/api/v1/records"
	if scope.SpaceID != "" {
		path = fmt.Sprintf("/api/v1/spaces/%s/records", scope.SpaceID)
	}
	if taskID != "" {
		path += "?task_id=" + taskID
	}
	var records []*model.TaskRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ApproveRecord 审批通过
func (c *Client) ApproveRecord(ctx context.Context, spaceID, recordID, comment string) (*ApprovalResult, error) {
	path := fmt.Sprintf("/api/v1/spaces/%s/records/%s/approve", spaceID, recordID)
	body := map[string]string{"comment": comment}
	var result ApprovalResult
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectRecord 审批驳回
func (c *Client) RejectRecord(ctx context.Context, spaceID, recordID, reason string) (*RejectResult, error) {
	path := fmt.Sprintf("/api/v1/spaces/%s/records/%s/reject", spaceID, recordID)
	body := map[string]string{"reason": reason}
	var result RejectResult
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListHistory 获取任务的审批历史
func (c *Client) ListHistory(ctx context.Context, spaceID, taskID string) ([]*model.HistoryEvent, error) {
	path := fmt.Sprintf("/api/v1/spaces/%s/tasks/%s/history", spaceID, taskID)
	var events []*model.HistoryEvent
	if err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetSpace 获取空间及成员快照
func (c *Client) GetSpace(ctx context.Context, id string) (*model.Space, error) {
	var space model.Space
	if err := c.do(ctx, http.MethodGet, "/api/v1/spaces/"+id, nil, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

// ListDreams 获取梦境列表
func (c *Client) ListDreams(ctx context.Context, scope Scope) ([]model.Dream, error) {
	path := "/api/v1/dreams"
	if scope.SpaceID != "" {
		path = fmt.Sprintf("/api/v1/spaces/%s/dreams", scope.SpaceID)
	}
	var dreams []model.Dream
	if err := c.do(ctx, http.MethodGet, path, nil, &dreams); err != nil {
		return nil, err
	}
	return dreams, nil
}

// preflight 网络请求前的凭证检查
func (c *Client) preflight() error {
	if c.creds == nil || c.creds.Token() == "" {
		return errs.NewAuthorization("missing credential: not logged in")
	}
	return nil
}

// do 发送 JSON 请求并解码响应
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	return c.doRaw(ctx, method, path, reader, "application/json", out)
}

// doRaw 发送请求,进行错误分类并解码信封
func (c *Client) doRaw(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	if err := c.preflight(); err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errs.NewTransient("request rate limiter interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.Token())
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logRequest(method, path, 0, start, err)
		return errs.NewTransient("request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logRequest(method, path, resp.StatusCode, start, err)
		return errs.NewTransient("failed to read response body", err)
	}

	metrics.RecordAPIRequest(method, resp.StatusCode, time.Since(start).Seconds())
	c.logRequest(method, path, resp.StatusCode, start, nil)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 服务端错误消息原样透传
		message := http.StatusText(resp.StatusCode)
		var env Response
		if jsonErr := json.Unmarshal(payload, &env); jsonErr == nil && env.Message != "" {
			message = env.Message
		}
		return errs.NewServer(resp.StatusCode, message)
	}

	if err := decodeEnvelope(payload, out); err != nil {
		var e *errs.Error
		if errors.As(err, &e) && e.Path != "" {
			c.logger.WithFields(logrus.Fields{
				"method": method,
				"path":   path,
				"field":  e.Path,
			}).Error("response decoding failed")
		}
		return err
	}
	return nil
}

// logRequest 记录结构化请求日志
func (c *Client) logRequest(method, path string, status int, start time.Time, err error) {
	entry := c.logger.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  status,
		"latency": time.Since(start).String(),
	})
	switch {
	case err != nil:
		entry.WithError(err).Warn("API request failed")
	case status >= 500:
		entry.Error("API request")
	case status >= 400:
		entry.Warn("API request")
	default:
		entry.Debug("API request")
	}
}
