package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig 测试默认配置值
func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, 30, cfg.Server.Timeout)

	// 对账默认: 回读 3 次,间隔 1 秒
	assert.Equal(t, 3, cfg.Sync.MaxRetries)
	assert.Equal(t, 1000, cfg.Sync.RetryDelay)

	assert.Equal(t, "tapirtwins.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Database.MaxRetries)
	assert.Equal(t, 1000, cfg.Database.RetryInterval)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoadFromFile 从配置文件加载
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  base_url: https://api.example.com
  timeout: 10
sync:
  max_retries: 5
  retry_delay: 200
auth:
  token: token-001
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 10, cfg.Server.Timeout)
	assert.Equal(t, 5, cfg.Sync.MaxRetries)
	assert.Equal(t, 200, cfg.Sync.RetryDelay)
	assert.Equal(t, "token-001", cfg.Auth.Token)

	// 未覆盖的项保留默认值
	assert.Equal(t, "tapirtwins.db", cfg.Database.Path)
}

// TestLoadMissingFile 指定的配置文件不存在时报错
func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// TestIsProduction 环境判定
func TestIsProduction(t *testing.T) {
	assert.False(t, IsProduction(nil))
	assert.False(t, IsProduction(&Config{Env: "development"}))
	assert.True(t, IsProduction(&Config{Env: "production"}))
}
