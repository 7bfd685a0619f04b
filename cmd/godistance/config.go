package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/Kevin-Rudy/godistance/pkg/session"
	"github.com/Kevin-Rudy/godistance/pkg/tui"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用层配置聚合
type AppConfig struct {
	SessionConfig *session.Config
	TUIConfig     *tui.Config
	Storage       StorageConfig
	Metrics       MetricsConfig
	Log           LogConfig
}

// StorageConfig 样本记录配置
type StorageConfig struct {
	Record string `yaml:"record"`
}

// MetricsConfig 指标服务配置
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig 日志配置
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// fileConfig YAML配置文件的结构，零值表示使用默认值
type fileConfig struct {
	Session struct {
		URL            string        `yaml:"url"`
		Unit           string        `yaml:"unit"`
		ConnectTimeout time.Duration `yaml:"connect_timeout"`
		MaxMessageSize int64         `yaml:"max_message_size"`
		Proxy          string        `yaml:"proxy"`
		LiveFrames     bool          `yaml:"live_frames"`
		AutoStart      bool          `yaml:"autostart"`
	} `yaml:"session"`
	TUI struct {
		RefreshRate time.Duration `yaml:"refresh_rate"`
		ChartHeight int           `yaml:"chart_height"`
	} `yaml:"tui"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// defaultAppConfig 默认配置
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		SessionConfig: session.DefaultConfig(),
		TUIConfig:     tui.DefaultConfig(),
		Log:           LogConfig{Level: "info"},
	}
}

// loadConfigFile 读取YAML配置文件
func loadConfigFile(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return &fc, nil
}

// applyFile 把配置文件中非零的字段覆盖到配置上
func (config *AppConfig) applyFile(fc *fileConfig) error {
	s := config.SessionConfig
	if fc.Session.URL != "" {
		s.Endpoint = fc.Session.URL
	}
	if fc.Session.Unit != "" {
		unit, err := core.ParseUnit(fc.Session.Unit)
		if err != nil {
			return err
		}
		s.Unit = unit
	}
	if fc.Session.ConnectTimeout != 0 {
		s.ConnectTimeout = fc.Session.ConnectTimeout
	}
	if fc.Session.MaxMessageSize != 0 {
		s.MaxMessageSize = fc.Session.MaxMessageSize
	}
	if fc.Session.Proxy != "" {
		s.ProxyURL = fc.Session.Proxy
	}
	if fc.Session.LiveFrames {
		s.LiveFrames = true
	}
	if fc.Session.AutoStart {
		config.TUIConfig.AutoStart = true
	}

	if fc.TUI.RefreshRate != 0 {
		config.TUIConfig.RefreshInterval = fc.TUI.RefreshRate
	}
	if fc.TUI.ChartHeight != 0 {
		config.TUIConfig.ChartHeight = fc.TUI.ChartHeight
	}

	if fc.Storage.Record != "" {
		config.Storage.Record = fc.Storage.Record
	}
	if fc.Metrics.Addr != "" {
		config.Metrics.Addr = fc.Metrics.Addr
	}
	if fc.Log.File != "" {
		config.Log.File = fc.Log.File
	}
	if fc.Log.Level != "" {
		config.Log.Level = fc.Log.Level
	}
	return nil
}

// applyFlags 用命令行中显式给出的参数覆盖配置
func (config *AppConfig) applyFlags(c *cli.Context) error {
	s := config.SessionConfig
	if c.IsSet("url") {
		s.Endpoint = c.String("url")
	}
	if c.IsSet("unit") {
		unit, err := core.ParseUnit(c.String("unit"))
		if err != nil {
			return err
		}
		s.Unit = unit
	}
	if c.IsSet("connect-timeout") {
		s.ConnectTimeout = c.Duration("connect-timeout")
	}
	if c.IsSet("max-message-size") {
		s.MaxMessageSize = c.Int64("max-message-size")
	}
	if c.IsSet("proxy") {
		s.ProxyURL = c.String("proxy")
	}
	if c.IsSet("live-frames") {
		s.LiveFrames = c.Bool("live-frames")
	}
	if c.IsSet("autostart") {
		config.TUIConfig.AutoStart = c.Bool("autostart")
	}

	if c.IsSet("refresh-rate") {
		config.TUIConfig.RefreshInterval = c.Duration("refresh-rate")
	}
	if c.IsSet("chart-height") {
		config.TUIConfig.ChartHeight = c.Int("chart-height")
	}

	if c.IsSet("record") {
		config.Storage.Record = c.String("record")
	}
	if c.IsSet("metrics-addr") {
		config.Metrics.Addr = c.String("metrics-addr")
	}
	if c.IsSet("log-file") {
		config.Log.File = c.String("log-file")
	}
	if c.IsSet("log-level") {
		config.Log.Level = c.String("log-level")
	}
	return nil
}

// buildConfigFromCLI 按 默认值 -> 配置文件 -> 命令行参数 的顺序构建配置
func buildConfigFromCLI(c *cli.Context) (*AppConfig, error) {
	config := defaultAppConfig()

	if path := c.String("config"); path != "" {
		fc, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := config.applyFile(fc); err != nil {
			return nil, fmt.Errorf("配置文件错误: %w", err)
		}
	}

	if err := config.applyFlags(c); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// validateConfig 验证配置的合理性
func validateConfig(config *AppConfig) error {
	// 验证会话配置
	if err := config.SessionConfig.Validate(); err != nil {
		return fmt.Errorf("会话配置错误: %w", err)
	}

	// 验证 TUI 配置
	if err := config.TUIConfig.Validate(); err != nil {
		return fmt.Errorf("tui配置错误: %w", err)
	}

	if _, err := parseLogLevel(config.Log.Level); err != nil {
		return err
	}

	if config.Storage.Record != "" && config.Storage.Record == config.Log.File {
		return errors.New("记录文件和日志文件不能是同一个文件")
	}

	return nil
}

// parseLogLevel 解析日志级别
func parseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("无效的日志级别 '%s'，可选值为 debug, info, warn, error", level)
	}
	return l, nil
}
