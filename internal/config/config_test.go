package config_test

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/UserUmbasa/explore-with-me/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadConfigFromFile 测试从配置文件加载配置
func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8081
database:
  host: "db"
  dbname: "ewm"
stats:
  server:
    url: "http://stats-server:9090"
hits:
  workers: 4
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "http://stats-server:9090", cfg.Stats.Server.URL)
	assert.Equal(t, "ewm-main-service", cfg.Stats.App)
	assert.Equal(t, 4, cfg.Hits.Workers)
	assert.Equal(t, 1000, cfg.Hits.QueueSize)
}

// TestLoadConfigFromEnv 测试环境变量覆盖
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9091")
	t.Setenv("APP_STATS_SERVER_URL", "http://127.0.0.1:9999")

	cfg, err := config.Load(writeConfig(t, "env: development\n"))
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Stats.Server.URL)
}

// TestLoadConfigRejectsRelativeStatsURL 测试统计服务地址校验
func TestLoadConfigRejectsRelativeStatsURL(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
stats:
  server:
    url: "stats-server:9090/path"
`))
	assert.Error(t, err)
}

// TestValidate 测试配置校验
func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Hits.QueueSize = -1
	assert.Error(t, cfg.Validate())
}

// TestProductionDefaults 测试生产环境默认值
func TestProductionDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg := config.Default()
	assert.True(t, config.IsProduction(cfg))
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 200, cfg.Database.MaxOpenConns)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// TestWatcher_HotReload 测试配置文件变更后通知订阅者
func TestWatcher_HotReload(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	watcher := config.NewWatcher(path, cfg, quietLogger())
	var mu sync.Mutex
	var changed *config.Config
	watcher.OnChange(func(c *config.Config) {
		mu.Lock()
		defer mu.Unlock()
		changed = c
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return changed != nil && changed.Log.Level == "error"
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, "error", watcher.Current().Log.Level)
}

// TestWatcher_ReloadRejectsInvalid 测试非法配置不会替换当前配置
func TestWatcher_ReloadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	watcher := config.NewWatcher(path, cfg, quietLogger())
	calls := 0
	watcher.OnChange(func(*config.Config) { calls++ })

	require.NoError(t, os.WriteFile(path, []byte("stats:\n  server:\n    url: relative/path\n"), 0644))
	assert.Error(t, watcher.Reload())
	assert.Same(t, cfg, watcher.Current())
	assert.Zero(t, calls)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))
	require.NoError(t, watcher.Reload())
	assert.Equal(t, "warn", watcher.Current().Log.Level)
	assert.Equal(t, 1, calls)
}

// TestWatcher_StartMissingFile 测试配置文件不存在时启动失败
func TestWatcher_StartMissingFile(t *testing.T) {
	watcher := config.NewWatcher(filepath.Join(t.TempDir(), "absent.yaml"), config.Default(), quietLogger())
	assert.Error(t, watcher.Start())
}
