package session

import (
	"testing"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
)

// TestDefaultConfig 测试默认配置
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if config.Endpoint != "ws://localhost:8000/ws" {
		t.Errorf("Unexpected default endpoint %q", config.Endpoint)
	}
	if config.HistorySize != core.HistoryCapacity {
		t.Errorf("Expected history size %d, got %d", core.HistoryCapacity, config.HistorySize)
	}
	if config.ConnectTimeout <= 0 {
		t.Error("Default config should carry a connection timeout")
	}
}

// TestConfigValidate 测试配置验证
func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }},
		{"http endpoint", func(c *Config) { c.Endpoint = "http://localhost:8000/ws" }},
		{"missing host", func(c *Config) { c.Endpoint = "ws:///ws" }},
		{"zero timeout", func(c *Config) { c.ConnectTimeout = 0 }},
		{"tiny timeout", func(c *Config) { c.ConnectTimeout = 10 * time.Millisecond }},
		{"zero message size", func(c *Config) { c.MaxMessageSize = 0 }},
		{"zero history", func(c *Config) { c.HistorySize = 0 }},
		{"huge history", func(c *Config) { c.HistorySize = 5000 }},
		{"bad unit", func(c *Config) { c.Unit = core.Unit(7) }},
		{"http proxy", func(c *Config) { c.ProxyURL = "http://127.0.0.1:3128" }},
	}

	for _, tc := range cases {
		config := DefaultConfig()
		tc.mutate(config)
		if err := config.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	config := DefaultConfig()
	config.Endpoint = "wss://example.com:9443/ws"
	config.ProxyURL = "socks5://127.0.0.1:1080"
	config.Unit = core.Centimeters
	if err := config.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}
