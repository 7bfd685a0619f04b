// Package session 传输层实现
package session

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"
)

// Conn 表示一条已经打开的只读流式连接
type Conn interface {
	// ReadMessage 阻塞直到收到下一条消息或连接出错
	ReadMessage() ([]byte, error)

	// Close 关闭连接，可以与ReadMessage并发调用，并且可以重复调用
	Close() error
}

// Dialer 负责建立到服务端的连接
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// WebSocketDialer 基于gorilla/websocket的Dialer实现
type WebSocketDialer struct {
	dialer    *websocket.Dialer
	readLimit int64
}

// NewWebSocketDialer 根据配置创建WebSocket拨号器
func NewWebSocketDialer(config *Config) (*WebSocketDialer, error) {
	d := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: config.ConnectTimeout,
	}

	if config.ProxyURL != "" {
		dialContext, err := socksDialContext(config.ProxyURL)
		if err != nil {
			return nil, err
		}
		// 走SOCKS代理时不再使用HTTP代理
		d.Proxy = nil
		d.NetDialContext = dialContext
	}

	return &WebSocketDialer{
		dialer:    d,
		readLimit: config.MaxMessageSize,
	}, nil
}

// socksDialContext 使用x/net/proxy构造经由SOCKS5代理的拨号函数
func socksDialContext(rawURL string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("无法解析代理地址: %w", err)
	}

	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("无法创建代理拨号器: %w", err)
	}

	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// Dial 实现Dialer接口
func (w *WebSocketDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	conn, resp, err := w.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("握手失败 (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, err
	}
	conn.SetReadLimit(w.readLimit)

	return &wsConn{conn: conn}, nil
}

// closeFrameTimeout 发送关闭帧的最长等待时间
const closeFrameTimeout = 250 * time.Millisecond

// wsConn 包装websocket连接
type wsConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// ReadMessage 实现Conn接口，文本帧和二进制帧都按原样返回
func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Close 实现Conn接口，尽量先发送关闭帧再关闭底层连接
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeFrameTimeout))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
