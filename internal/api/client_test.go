package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chen-001/tapirtwins-go/internal/auth"
	"github.com/chen-001/tapirtwins-go/internal/config"
	"github.com/chen-001/tapirtwins-go/internal/errs"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Server.BaseURL = srv.URL

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewClient(cfg, auth.NewStaticCredentials("token-001", "user-001"), logger), srv
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// TestClientPreflight 凭证缺失时在发起网络请求前返回权限错误
func TestClientPreflight(t *testing.T) {
	hit := false
	router := testRouter()
	router.NoRoute(func(c *gin.Context) {
		hit = true
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	cfg := config.Default()
	cfg.Server.BaseURL = srv.URL
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	client := NewClient(cfg, auth.NewStaticCredentials("", ""), logger)

	_, err := client.ListTasks(context.Background(), PersonalScope())
	assert.True(t, errs.IsAuthorization(err))
	assert.False(t, hit)
}

// TestClientListTasks 解析统一响应信封
func TestClientListTasks(t *testing.T) {
	router := testRouter()
	router.GET("/api/v1/tasks", func(c *gin.Context) {
		// 请求必须携带凭证与请求 ID
		assert.Equal(t, "Bearer token-001", c.GetHeader("Authorization"))
		assert.NotEmpty(t, c.GetHeader("X-Request-ID"))
		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"data": []gin.H{
				{"id": "task-001", "title": "洗碗", "required_images": 2},
			},
		})
	})

	client, _ := newTestClient(t, router)
	tasks, err := client.ListTasks(context.Background(), PersonalScope())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-001", tasks[0].ID)
	assert.Equal(t, 2, tasks[0].RequiredImages)
}

// TestClientSpaceScope 空间范围使用空间路径
func TestClientSpaceScope(t *testing.T) {
	router := testRouter()
	router.GET("/api/v1/spaces/:id/tasks", func(c *gin.Context) {
		assert.Equal(t, "space-001", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": []gin.H{}})
	})

	client, _ := newTestClient(t, router)
	tasks, err := client.ListTasks(context.Background(), SpaceScope("space-001"))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestClientServerError 服务端错误消息原样透传
func TestClientServerError(t *testing.T) {
	router := testRouter()
	router.POST("/api/v1/spaces/:id/records/:rid/approve", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"code": 409, "message": "记录已被其他审批人处理"})
	})

	client, _ := newTestClient(t, router)
	_, err := client.ApproveRecord(context.Background(), "space-001", "rec-001", "")
	require.Error(t, err)
	assert.True(t, errs.IsServer(err))

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "记录已被其他审批人处理", apiErr.Message)
}

// TestClientDecodingError 响应形状不符时返回携带字段路径的解码错误
func TestClientDecodingError(t *testing.T) {
	router := testRouter()
	router.POST("/api/v1/tasks", func(c *gin.Context) {
		// due_date 应为字符串,这里返回数字触发类型错误
		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"data": gin.H{"id": "task-001", "title": "洗碗", "due_date": 12345},
		})
	})

	client, _ := newTestClient(t, router)
	_, err := client.CreateTask(context.Background(), &TaskInput{Title: "洗碗", RequiredImages: 1})
	require.Error(t, err)
	assert.True(t, errs.IsDecoding(err))

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Path, "due_date")
}

// TestClientApproveResult 审批响应携带服务端生成的历史条目
func TestClientApproveResult(t *testing.T) {
	router := testRouter()
	router.POST("/api/v1/spaces/:id/records/:rid/approve", func(c *gin.Context) {
		var body map[string]string
		assert.NoError(t, c.ShouldBindJSON(&body))
		assert.Equal(t, "做得好", body["comment"])
		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"data": gin.H{
				"message": "审批成功",
				"history_event": gin.H{
					"id": "h1", "task_id": "task-001", "action": "approve",
					"user_name": "桃子", "description": "桃子 通过了任务「洗碗」的打卡",
				},
			},
		})
	})

	client, _ := newTestClient(t, router)
	result, err := client.ApproveRecord(context.Background(), "space-001", "rec-001", "做得好")
	require.NoError(t, err)
	assert.Equal(t, "审批成功", result.Message)
	require.NotNil(t, result.History)
	assert.Equal(t, "h1", result.History.ID)
}

// TestClientTransientError 传输层失败归类为瞬时网络错误
func TestClientTransientError(t *testing.T) {
	cfg := config.Default()
	// 不可达地址
	cfg.Server.BaseURL = "http://127.0.0.1:1"
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	client := NewClient(cfg, auth.NewStaticCredentials("token-001", "user-001"), logger)

	_, err := client.ListTasks(context.Background(), PersonalScope())
	assert.True(t, errs.IsTransient(err))
}

// TestTaskInputSimplified 降级请求剥离指派字段,保留其余内容
func TestTaskInputSimplified(t *testing.T) {
	in := &TaskInput{
		Title:               "洗碗",
		RequiredImages:      2,
		SpaceID:             "space-001",
		AssignedSubmitterID: "user-a",
		AssignedApproverIDs: []string{"user-b"},
	}

	simple := in.Simplified()
	assert.Empty(t, simple.AssignedSubmitterID)
	assert.Nil(t, simple.AssignedApproverIDs)
	assert.Equal(t, "洗碗", simple.Title)
	assert.Equal(t, "space-001", simple.SpaceID)

	// 原请求不被修改
	assert.Equal(t, "user-a", in.AssignedSubmitterID)
}
