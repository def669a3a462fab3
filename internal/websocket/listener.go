package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/chen-001/tapirtwins-go/internal/auth"
)

const (
	// 写超时时间
	writeWait = 10 * time.Second

	// 读超时时间
	pongWait = 60 * time.Second

	// ping 周期 (必须小于 pongWait)
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 512 * 1024
)

// Event 空间内任务变更事件
type Event struct {
	Type   string `json:"type"` // task_submitted / record_approved / record_rejected
	TaskID string `json:"task_id"`
}

// Listener 空间事件监听器
// 连接空间的事件通道,收到任务变更时触发回调刷新本地状态
type Listener struct {
	baseURL string
	spaceID string
	creds   auth.CredentialProvider
	onEvent func(Event)
	logger  *logrus.Logger
}

// NewListener 创建事件监听器
func NewListener(baseURL, spaceID string, creds auth.CredentialProvider, onEvent func(Event), logger *logrus.Logger) *Listener {
	return &Listener{
		baseURL: baseURL,
		spaceID: spaceID,
		creds:   creds,
		onEvent: onEvent,
		logger:  logger,
	}
}

// Run 建立连接并持续读取事件,直到连接断开或上下文取消
func (l *Listener) Run(ctx context.Context) error {
	wsURL, err := l.endpoint()
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+l.creds.Token())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("failed to dial space event channel: %w", err)
	}
	defer conn.Close()

	// 上下文取消时关闭连接,解除读阻塞
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			conn.Close()
		case <-done:
		}
	}()

	// ping 保活
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.logger.WithError(err).Warn("space event channel closed unexpectedly")
				return err
			}
			return nil
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			l.logger.WithError(err).Debug("ignoring malformed space event")
			continue
		}
		if l.onEvent != nil {
			l.onEvent(event)
		}
	}
}

// endpoint 将 HTTP 基地址换算为空间事件通道的 ws 地址
func (l *Listener) endpoint() (string, error) {
	u, err := url.Parse(l.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + fmt.Sprintf("/api/v1/spaces/%s/ws", l.spaceID)
	return u.String(), nil
}
