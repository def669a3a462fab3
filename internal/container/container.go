package container

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chen-001/tapirtwins-go/internal/api"
	"github.com/chen-001/tapirtwins-go/internal/auth"
	"github.com/chen-001/tapirtwins-go/internal/config"
	"github.com/chen-001/tapirtwins-go/internal/database"
	"github.com/chen-001/tapirtwins-go/internal/engine"
	"github.com/chen-001/tapirtwins-go/internal/logging"
	"github.com/chen-001/tapirtwins-go/internal/service"
	"github.com/chen-001/tapirtwins-go/internal/settings"
	"github.com/chen-001/tapirtwins-go/internal/store"
	syncpkg "github.com/chen-001/tapirtwins-go/internal/sync"
	"github.com/chen-001/tapirtwins-go/internal/websocket"
)

// Container 依赖注入容器
// 管理客户端的全部依赖: 本地数据库、远端客户端、存储、
// 审批引擎与对账协调器;不使用任何全局可变单例
type Container struct {
	cfg         *config.Config
	logger      *logrus.Logger
	db          *gorm.DB
	creds       auth.CredentialProvider
	client      *api.Client
	tasks       *store.TaskStore
	records     *store.RecordStore
	coordinator *syncpkg.Coordinator
	settings    settings.Repository
	taskSvc     service.TaskService
}

// NewContainer 创建依赖注入容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化日志
	logger, err := logging.NewLoggerFromConfig(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 2. 打开本地数据库(带重试,指数退避)
	db, err := database.OpenWithRetry(
		cfg.Database.Path,
		cfg.Database.MaxRetries,
		time.Duration(cfg.Database.RetryInterval)*time.Millisecond,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate local database: %w", err)
	}
	settingsRepo := settings.NewRepository(db)

	// 3. 解析凭证
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	// 4. 初始化远端客户端与存储
	client := api.NewClient(cfg, creds, logger)
	tasks := store.NewTaskStore()
	records := store.NewRecordStore()

	// 5. 初始化审批引擎与对账协调器
	eng := engine.New(nil)
	coordinator := syncpkg.NewCoordinator(
		tasks, records, syncpkg.RealClock,
		cfg.Sync.MaxRetries,
		time.Duration(cfg.Sync.RetryDelay)*time.Millisecond,
		logger,
	)

	// 6. 组装任务工作流服务
	taskSvc := service.NewTaskService(client, eng, creds, tasks, records, coordinator, settingsRepo, logger)

	return &Container{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		creds:       creds,
		client:      client,
		tasks:       tasks,
		records:     records,
		coordinator: coordinator,
		settings:    settingsRepo,
		taskSvc:     taskSvc,
	}, nil
}

// loadCredentials 从配置解析 bearer 凭证
func loadCredentials(cfg *config.Config) (auth.CredentialProvider, error) {
	token := cfg.Auth.Token
	if token == "" && cfg.Auth.TokenFile != "" {
		data, err := os.ReadFile(cfg.Auth.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	return auth.NewTokenCredentials(token), nil
}

// Config 获取配置
func (c *Container) Config() *config.Config { return c.cfg }

// Logger 获取日志记录器
func (c *Container) Logger() *logrus.Logger { return c.logger }

// DB 获取本地数据库连接
func (c *Container) DB() *gorm.DB { return c.db }

// Credentials 获取凭证提供者
func (c *Container) Credentials() auth.CredentialProvider { return c.creds }

// TaskService 获取任务工作流服务
func (c *Container) TaskService() service.TaskService { return c.taskSvc }

// Settings 获取本地设置仓储
func (c *Container) Settings() settings.Repository { return c.settings }

// NewSpaceListener 创建空间事件监听器
func (c *Container) NewSpaceListener(spaceID string, onEvent func(websocket.Event)) *websocket.Listener {
	return websocket.NewListener(c.cfg.Server.BaseURL, spaceID, c.creds, onEvent, c.logger)
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.taskSvc != nil {
		c.taskSvc.Close()
	}
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
