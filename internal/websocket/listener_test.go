package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chen-001/tapirtwins-go/internal/auth"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newTestListener(baseURL string, onEvent func(Event)) *Listener {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewListener(baseURL, "space-001", auth.NewStaticCredentials("token-001", "user-001"), onEvent, logger)
}

// TestListenerRun 监听器解码事件并触发回调
// 非法消息被跳过,上下文取消时干净返回
func TestListenerRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/spaces/:id/ws", func(c *gin.Context) {
		// 连接必须携带凭证
		assert.Equal(t, "Bearer token-001", c.GetHeader("Authorization"))
		assert.Equal(t, "space-001", c.Param("id"))

		conn, err := testUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// 先发一条非法消息,再发一条合法事件
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not-json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"task_submitted","task_id":"task-001"}`))

		// 保持连接直到客户端关闭
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	events := make(chan Event, 4)
	listener := newTestListener(srv.URL, func(ev Event) { events <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	select {
	case ev := <-events:
		assert.Equal(t, "task_submitted", ev.Type)
		assert.Equal(t, "task-001", ev.TaskID)
	case <-time.After(2 * time.Second):
		t.Fatal("event callback not invoked")
	}

	// 非法消息不触发回调
	assert.Equal(t, 0, len(events))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not return after context cancellation")
	}
}

// TestListenerNormalClosure 服务端正常关闭不视为错误
func TestListenerNormalClosure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/spaces/:id/ws", func(c *gin.Context) {
		conn, err := testUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	listener := newTestListener(srv.URL, nil)

	done := make(chan error, 1)
	go func() { done <- listener.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not return after server closure")
	}
}

// TestListenerEndpoint HTTP 基地址换算为 ws 地址
func TestListenerEndpoint(t *testing.T) {
	listener := newTestListener("https://api.example.com/base/", nil)
	endpoint, err := listener.endpoint()
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/base/api/v1/spaces/space-001/ws", endpoint)

	listener = newTestListener("http://localhost:8080", nil)
	endpoint, err = listener.endpoint()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/v1/spaces/space-001/ws", endpoint)
}

// TestListenerDialFailure 无法建立连接时返回错误
func TestListenerDialFailure(t *testing.T) {
	listener := newTestListener("http://127.0.0.1:1", nil)
	err := listener.Run(context.Background())
	assert.Error(t, err)
}
