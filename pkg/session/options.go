// Package session 选项模式支持
package session

import (
	"log/slog"
	"time"
)

// Option 控制器选项函数类型
type Option func(*Controller)

// WithDialer 设置传输拨号器，默认使用WebSocketDialer
func WithDialer(d Dialer) Option {
	return func(c *Controller) {
		c.dialer = d
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics 设置Prometheus指标
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithRecorder 设置样本持久化
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithClock 设置时间来源，测试中用于固定接收时间
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator 设置会话ID生成函数，默认使用UUID
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		c.newID = newID
	}
}

// NewControllerWithOptions 使用默认配置和config选项创建控制器
func NewControllerWithOptions(configure func(*Config), opts ...Option) (*Controller, error) {
	config := DefaultConfig()
	if configure != nil {
		configure(config)
	}
	return NewController(config, opts...)
}
