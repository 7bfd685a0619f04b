package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/urfave/cli/v2"
)

// parseArgs 使用真实的CLI定义解析参数，返回构建出的配置
func parseArgs(t *testing.T, args ...string) (*AppConfig, error) {
	t.Helper()

	var (
		config   *AppConfig
		buildErr error
	)
	app := createCliApp()
	app.Before = nil
	app.Action = func(c *cli.Context) error {
		config, buildErr = buildConfigFromCLI(c)
		return nil
	}

	if err := app.Run(append([]string{AppName}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return config, buildErr
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "godistance.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

// TestDefaultFlags 测试不带参数时使用默认配置
func TestDefaultFlags(t *testing.T) {
	t.Setenv("GODISTANCE_URL", "")
	os.Unsetenv("GODISTANCE_URL")

	config, err := parseArgs(t)
	if err != nil {
		t.Fatalf("buildConfigFromCLI failed: %v", err)
	}

	s := config.SessionConfig
	if s.Endpoint != "ws://localhost:8000/ws" {
		t.Errorf("Unexpected default endpoint %q", s.Endpoint)
	}
	if s.ConnectTimeout != 10*time.Second {
		t.Errorf("Unexpected default connect timeout %v", s.ConnectTimeout)
	}
	if s.Unit != core.Meters {
		t.Errorf("Expected meters by default, got %v", s.Unit)
	}
	if s.HistorySize != core.HistoryCapacity {
		t.Errorf("Expected history size %d, got %d", core.HistoryCapacity, s.HistorySize)
	}
	if config.TUIConfig.AutoStart {
		t.Error("Autostart should be off by default")
	}
	if config.Log.Level != "info" {
		t.Errorf("Expected info log level, got %q", config.Log.Level)
	}
}

// TestFlagsOverride 测试命令行参数
func TestFlagsOverride(t *testing.T) {
	config, err := parseArgs(t,
		"--url", "wss://camera.local/ws",
		"--unit", "cm",
		"--connect-timeout", "3s",
		"--live-frames",
		"--autostart",
		"-r", "100ms",
		"--record", "samples.db",
		"--metrics-addr", ":9100",
		"--log-level", "debug",
	)
	if err != nil {
		t.Fatalf("buildConfigFromCLI failed: %v", err)
	}

	s := config.SessionConfig
	if s.Endpoint != "wss://camera.local/ws" || s.Unit != core.Centimeters || s.ConnectTimeout != 3*time.Second || !s.LiveFrames {
		t.Errorf("Session flags not applied: %+v", s)
	}
	if !config.TUIConfig.AutoStart || config.TUIConfig.RefreshInterval != 100*time.Millisecond {
		t.Errorf("TUI flags not applied: %+v", config.TUIConfig)
	}
	if config.Storage.Record != "samples.db" || config.Metrics.Addr != ":9100" || config.Log.Level != "debug" {
		t.Errorf("Ambient flags not applied: %+v %+v %+v", config.Storage, config.Metrics, config.Log)
	}
}

// TestEnvURL 测试通过环境变量指定服务地址
func TestEnvURL(t *testing.T) {
	t.Setenv("GODISTANCE_URL", "ws://10.0.0.5:8000/ws")

	config, err := parseArgs(t)
	if err != nil {
		t.Fatalf("buildConfigFromCLI failed: %v", err)
	}
	if config.SessionConfig.Endpoint != "ws://10.0.0.5:8000/ws" {
		t.Errorf("Expected endpoint from environment, got %q", config.SessionConfig.Endpoint)
	}
}

// TestConfigFile 测试配置文件加载以及命令行参数优先
func TestConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
session:
  url: ws://192.168.1.20:8000/ws
  unit: cm
  connect_timeout: 4s
  proxy: socks5://127.0.0.1:1080
tui:
  refresh_rate: 500ms
  chart_height: 20
storage:
  record: /tmp/distance.db
metrics:
  addr: 127.0.0.1:9200
log:
  file: /tmp/godistance.log
  level: warn
`)

	config, err := parseArgs(t, "-c", path, "--unit", "m")
	if err != nil {
		t.Fatalf("buildConfigFromCLI failed: %v", err)
	}

	s := config.SessionConfig
	if s.Endpoint != "ws://192.168.1.20:8000/ws" {
		t.Errorf("Endpoint from file not applied, got %q", s.Endpoint)
	}
	if s.Unit != core.Meters {
		t.Errorf("Command line unit should override the file, got %v", s.Unit)
	}
	if s.ConnectTimeout != 4*time.Second || s.ProxyURL != "socks5://127.0.0.1:1080" {
		t.Errorf("Session values from file not applied: %+v", s)
	}
	if config.TUIConfig.RefreshInterval != 500*time.Millisecond || config.TUIConfig.ChartHeight != 20 {
		t.Errorf("TUI values from file not applied: %+v", config.TUIConfig)
	}
	if config.Storage.Record != "/tmp/distance.db" || config.Metrics.Addr != "127.0.0.1:9200" {
		t.Errorf("Storage/metrics values from file not applied: %+v %+v", config.Storage, config.Metrics)
	}
	if config.Log.File != "/tmp/godistance.log" || config.Log.Level != "warn" {
		t.Errorf("Log values from file not applied: %+v", config.Log)
	}
}

// TestInvalidConfig 测试无效配置
func TestInvalidConfig(t *testing.T) {
	cases := [][]string{
		{"--url", "http://localhost:8000/ws"},
		{"--unit", "inch"},
		{"--connect-timeout", "1ms"},
		{"--proxy", "ftp://127.0.0.1:21"},
		{"-r", "1ms"},
		{"--log-level", "verbose"},
		{"--record", "same.txt", "--log-file", "same.txt"},
		{"-c", "/nonexistent/godistance.yaml"},
	}

	for _, args := range cases {
		if _, err := parseArgs(t, args...); err == nil {
			t.Errorf("Expected error for args %v", args)
		}
	}

	bad := writeConfigFile(t, "session: [not, a, map]")
	if _, err := parseArgs(t, "-c", bad); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

// TestNewLogger 测试日志文件创建
func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "godistance.log")
	logger, closeLog, err := newLogger(LogConfig{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Debug("session: starting", "session", "s1")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected debug output in the log file")
	}

	if _, _, err := newLogger(LogConfig{Level: "nope"}); err == nil {
		t.Error("Expected error for an invalid log level")
	}
}
