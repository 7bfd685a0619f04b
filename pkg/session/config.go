// Package session 配置定义
package session

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
)

// Config 会话控制器的配置结构
type Config struct {
	Endpoint       string        // 测距服务的WebSocket地址
	ConnectTimeout time.Duration // 建立连接（含握手）的超时时间
	MaxMessageSize int64         // 单条入站消息的最大字节数（图像以base64内嵌）
	ProxyURL       string        // 可选的SOCKS5代理，例如 socks5://127.0.0.1:1080
	HistorySize    int           // 历史缓冲区容量
	Unit           core.Unit     // 初始显示单位
	LiveFrames     bool          // 负距离消息携带的图像是否仍然刷新画面
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       "ws://localhost:8000/ws", // 测距服务的默认部署地址
		ConnectTimeout: 10 * time.Second,         // 默认10秒连接超时
		MaxMessageSize: 8 << 20,                  // 默认8MiB
		HistorySize:    core.HistoryCapacity,     // 默认保留最近10个样本
		Unit:           core.Meters,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("服务地址不能为空")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("无法解析服务地址 '%s': %v", c.Endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("服务地址必须使用 ws:// 或 wss://，当前为 '%s'", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("服务地址缺少主机部分: '%s'", c.Endpoint)
	}

	if c.ConnectTimeout <= 0 {
		return errors.New("连接超时时间必须大于0")
	}

	if c.ConnectTimeout < 100*time.Millisecond {
		return errors.New("连接超时时间不能小于100ms")
	}

	if c.MaxMessageSize <= 0 {
		return errors.New("最大消息大小必须大于0")
	}

	if c.HistorySize <= 0 {
		return errors.New("历史缓冲区大小必须大于0")
	}

	if c.HistorySize > 1000 {
		return errors.New("历史缓冲区大小不能超过1000")
	}

	if c.Unit != core.Meters && c.Unit != core.Centimeters {
		return errors.New("显示单位必须是米或厘米")
	}

	if c.ProxyURL != "" {
		p, err := url.Parse(c.ProxyURL)
		if err != nil {
			return fmt.Errorf("无法解析代理地址 '%s': %v", c.ProxyURL, err)
		}
		if p.Scheme != "socks5" && p.Scheme != "socks5h" {
			return fmt.Errorf("代理地址必须使用 socks5:// 或 socks5h://，当前为 '%s'", c.ProxyURL)
		}
	}

	return nil
}
