package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigWatcherReload 配置文件重写后回调收到新的日志级别
func TestConfigWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	watcher := NewConfigWatcher(cfg, path)
	levels := make(chan string, 8)
	watcher.OnConfigChange(func(c *Config) { levels <- c.Log.Level })
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))

	// 文件系统事件可能触发多次回调,等到期望的级别出现为止
	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-levels:
			if level == "warn" {
				assert.Eventually(t, func() bool {
					return watcher.GetConfig().Log.Level == "warn"
				}, time.Second, 10*time.Millisecond)
				return
			}
		case <-deadline:
			t.Fatal("config change callback did not receive the updated log level")
		}
	}
}

// TestConfigWatcherStop 停止后不再分发变更
func TestConfigWatcherStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	watcher := NewConfigWatcher(cfg, path)
	fired := make(chan struct{}, 8)
	watcher.OnConfigChange(func(*Config) { fired <- struct{}{} })
	require.NoError(t, watcher.Start())

	watcher.Stop()
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644))

	select {
	case <-fired:
		t.Fatal("callback fired after Stop")
	case <-time.After(500 * time.Millisecond):
	}
}

// TestConfigWatcherMissingFile 配置文件不存在时启动失败
func TestConfigWatcherMissingFile(t *testing.T) {
	watcher := NewConfigWatcher(Default(), "/nonexistent/config.yaml")
	assert.Error(t, watcher.Start())
}

// TestConfigWatcherGetConfig 初始配置原样返回
func TestConfigWatcherGetConfig(t *testing.T) {
	cfg := Default()
	watcher := NewConfigWatcher(cfg, "config.yaml")
	assert.Same(t, cfg, watcher.GetConfig())
}
