package config

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Watcher 监听配置文件,变更通过校验后替换当前配置并通知订阅者
// 目前只有日志级别支持热更新,其余配置需要重启
type Watcher struct {
	v   *viper.Viper
	log *logrus.Logger

	mu        sync.RWMutex
	current   *Config
	listeners []func(*Config)

	stopped atomic.Bool
}

// NewWatcher 创建配置监听器,initial 为启动时加载的配置
func NewWatcher(path string, initial *Config, log *logrus.Logger) *Watcher {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	bindEnv(v)

	return &Watcher{v: v, log: log, current: initial}
}

// OnChange 订阅配置变更
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Current 当前生效的配置
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start 读取配置文件并开始监听
func (w *Watcher) Start() error {
	if err := w.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	w.v.OnConfigChange(func(e fsnotify.Event) {
		if w.stopped.Load() {
			return
		}
		if err := w.Reload(); err != nil {
			w.log.WithError(err).WithField("file", e.Name).Warn("ignoring config change")
		}
	})
	w.v.WatchConfig()
	return nil
}

// Reload 重新读取配置文件,校验失败时保留当前配置
func (w *Watcher) Reload() error {
	if err := w.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := decode(w.v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.current = cfg
	listeners := append([]func(*Config){}, w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	w.log.WithField("file", w.v.ConfigFileUsed()).Info("config reloaded")
	return nil
}

// Stop 停止处理变更事件
// viper 没有取消 WatchConfig 的接口,只能忽略后续事件
func (w *Watcher) Stop() {
	w.stopped.Store(true)
}
