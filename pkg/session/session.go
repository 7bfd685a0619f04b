// Package session 实现了core.DataSource接口，管理到测距服务的流式会话
// 显式的状态机：Idle -> Connecting -> Active -> Idle，出错时进入Failed，由Stop回到Idle
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/google/uuid"
)

// ErrNotIdle Start只能在空闲状态下调用
var ErrNotIdle = errors.New("会话未处于空闲状态")

// sessionRun 一次会话独占的资源
// 除id外的字段都由Controller.mu保护
type sessionRun struct {
	id        string
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc

	conn   Conn
	closed bool

	outcome string
	reason  string
}

// releaseLocked 取消拨号并交出需要关闭的连接，可以重复调用
// 关闭连接可能要等待对端，调用方必须在释放Controller.mu之后再关闭返回的连接
func (r *sessionRun) releaseLocked() Conn {
	r.cancel()
	if r.conn == nil || r.closed {
		return nil
	}
	r.closed = true
	return r.conn
}

// closeConn 关闭releaseLocked交出的连接
func closeConn(conn Conn) {
	if conn != nil {
		_ = conn.Close()
	}
}

// Controller 会话控制器，是会话状态和历史缓冲区的唯一修改者
type Controller struct {
	config   *Config
	dialer   Dialer
	logger   *slog.Logger
	metrics  *Metrics
	recorder Recorder
	now      func() time.Time
	newID    func() string

	mu          sync.Mutex
	state       core.State
	reason      string
	unit        core.Unit
	history     *core.History
	current     core.Sample
	hasCurrent  bool
	frame       []byte
	stats       core.Stats
	info        string
	calibration core.Calibration
	updatedAt   time.Time
	run         *sessionRun

	changes chan struct{}
	wg      sync.WaitGroup
}

// NewController 创建新的会话控制器，初始状态为Idle
func NewController(config *Config, opts ...Option) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		config:  config,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   uuid.NewString,
		state:   core.StateIdle,
		unit:    config.Unit,
		history: core.NewHistory(config.HistorySize),
		stats:   core.NewStats(),
		changes: make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.dialer == nil {
		d, err := NewWebSocketDialer(config)
		if err != nil {
			return nil, err
		}
		c.dialer = d
	}

	c.metrics.setState(c.state)

	return c, nil
}

// Start 实现core.DataSource接口，只能在Idle状态下调用
// 立即返回，拨号和接收在后台goroutine中进行
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state != core.StateIdle {
		state := c.state
		c.mu.Unlock()
		c.logger.Debug("session: start rejected", "state", state)
		return ErrNotIdle
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &sessionRun{
		id:        c.newID(),
		startedAt: c.now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	c.run = run
	c.resetSessionLocked()
	c.setStateLocked(core.StateConnecting, "")
	c.wg.Add(1)
	c.mu.Unlock()

	c.metrics.sessionEvent(outcomeStarted)
	c.logger.Info("session: starting", "session", run.id, "endpoint", c.config.Endpoint)
	c.notify()

	go c.serve(run)
	return nil
}

// Stop 实现core.DataSource接口，关闭连接并回到Idle
// 在Idle状态下调用是无操作
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == core.StateIdle {
		c.mu.Unlock()
		return
	}

	run := c.run
	stopped := false
	var conn Conn
	if run != nil {
		if run.outcome == "" {
			run.outcome = outcomeStopped
			stopped = true
		}
		conn = run.releaseLocked()
	}
	c.run = nil
	c.setStateLocked(core.StateIdle, "")
	c.mu.Unlock()

	closeConn(conn)

	if stopped {
		c.metrics.sessionEvent(outcomeStopped)
	}
	if run != nil {
		c.logger.Info("session: stopped", "session", run.id)
	}
	c.notify()
}

// Close 停止会话并等待后台goroutine退出
func (c *Controller) Close() error {
	c.Stop()
	c.wg.Wait()
	return nil
}

// ToggleUnit 实现core.DataSource接口
func (c *Controller) ToggleUnit() core.Unit {
	c.mu.Lock()
	c.unit = c.unit.Toggle()
	unit := c.unit
	c.mu.Unlock()

	c.notify()
	return unit
}

// SetUnit 设置显示单位
func (c *Controller) SetUnit(u core.Unit) {
	c.mu.Lock()
	c.unit = u
	c.mu.Unlock()

	c.notify()
}

// State 返回当前状态
func (c *Controller) State() core.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changes 实现core.DataSource接口
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// Snapshot 实现core.DataSource接口
func (c *Controller) Snapshot() core.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := core.Snapshot{
		State:       c.state,
		Reason:      c.reason,
		Endpoint:    c.config.Endpoint,
		Unit:        c.unit,
		Current:     c.current,
		HasCurrent:  c.hasCurrent,
		Frame:       c.frame, // 图像字节在解码后从不修改，可以共享
		History:     c.history.Snapshot(),
		Capacity:    c.history.Cap(),
		Stats:       c.stats,
		Info:        c.info,
		Calibration: c.calibration,
		UpdatedAt:   c.updatedAt,
	}
	if c.run != nil {
		snap.SessionID = c.run.id
	}
	return snap
}

// serve 单个会话的接收goroutine：拨号，然后按到达顺序逐条处理消息
func (c *Controller) serve(run *sessionRun) {
	defer c.wg.Done()

	recording := c.beginRecording(run)
	defer c.finish(run, recording)

	dialCtx, cancel := context.WithTimeout(run.ctx, c.config.ConnectTimeout)
	conn, err := c.dialer.Dial(dialCtx, c.config.Endpoint)
	cancel()
	if err != nil {
		c.fail(run, fmt.Sprintf("连接失败: %v", err))
		return
	}

	if !c.attach(run, conn) {
		_ = conn.Close()
		return
	}

	for {
		payload, err := conn.ReadMessage()
		if err != nil {
			c.fail(run, fmt.Sprintf("连接中断: %v", err))
			return
		}

		if !c.handle(run, payload, recording) {
			return
		}
	}
}

// attach 握手成功后登记连接并进入Active，会话已被停止时返回false
func (c *Controller) attach(run *sessionRun, conn Conn) bool {
	c.mu.Lock()
	if c.run != run || c.state != core.StateConnecting {
		c.mu.Unlock()
		return false
	}
	run.conn = conn
	c.setStateLocked(core.StateActive, "")
	c.mu.Unlock()

	c.logger.Info("session: connected", "session", run.id, "endpoint", c.config.Endpoint)
	c.notify()
	return true
}

// fail 传输错误导致会话失败，会话已不是当前会话或已经结束时忽略
func (c *Controller) fail(run *sessionRun, reason string) {
	c.mu.Lock()
	if c.run != run || !c.state.Live() {
		c.mu.Unlock()
		return
	}
	conn := c.failLocked(run, reason)
	c.mu.Unlock()

	closeConn(conn)

	c.metrics.sessionEvent(outcomeFailed)
	c.logger.Warn("session: failed", "session", run.id, "reason", reason)
	c.notify()
}

func (c *Controller) failLocked(run *sessionRun, reason string) Conn {
	run.outcome = outcomeFailed
	run.reason = reason
	conn := run.releaseLocked()
	c.setStateLocked(core.StateFailed, reason)
	return conn
}

// handle 处理一条入站消息，返回会话是否仍然存活
func (c *Controller) handle(run *sessionRun, payload []byte, recording bool) bool {
	msg := Decode(payload)
	receivedAt := c.now()

	c.mu.Lock()
	if c.run != run || !c.state.Live() {
		// Stop之后到达的消息直接忽略，也不计入指标
		c.mu.Unlock()
		return false
	}
	c.metrics.observeMessage(msg.Kind)

	var accepted *core.Sample
	var toClose Conn
	changed := true
	switch msg.Kind {
	case KindInfo:
		c.info = msg.Text

	case KindError:
		toClose = c.failLocked(run, msg.Text)

	case KindMeasurement:
		if msg.Distance < 0 {
			c.stats.Discard()
			c.metrics.sampleDiscarded()
			if c.config.LiveFrames && msg.Image != nil {
				c.frame = msg.Image
			}
			break
		}

		s := core.Sample{
			CapturedAt: receivedAt,
			Distance:   msg.Distance,
			Frame:      msg.Image,
		}
		c.history.Push(s)
		c.current = s
		c.hasCurrent = true
		c.stats.Observe(s.Distance)
		if msg.Image != nil {
			c.frame = msg.Image
		}
		c.metrics.sampleAccepted(s.Distance)
		accepted = &s

	case KindCalibration:
		c.calibration = core.Calibration{
			Status:      msg.Text,
			Progress:    msg.Progress,
			HasProgress: msg.HasProgress,
		}

	default:
		changed = false
	}

	if changed {
		c.updatedAt = receivedAt
	}
	live := c.state.Live()
	c.mu.Unlock()

	closeConn(toClose)

	switch msg.Kind {
	case KindInfo:
		c.logger.Info("session: server message", "session", run.id, "message", msg.Text)
	case KindError:
		c.metrics.sessionEvent(outcomeFailed)
		c.logger.Warn("session: server error", "session", run.id, "error", msg.Text)
	case KindMeasurement:
		if msg.ImageErr != nil {
			c.logger.Debug("session: undecodable image", "session", run.id, "error", msg.ImageErr)
		}
		if accepted == nil {
			c.logger.Debug("session: discarded measurement", "session", run.id, "distance", msg.Distance)
		}
	case KindCalibration:
		c.logger.Debug("session: calibration", "session", run.id, "status", msg.Text, "progress", msg.Progress)
	default:
		c.logger.Debug("session: unrecognized message", "session", run.id, "bytes", len(payload))
	}

	if accepted != nil && recording {
		if err := c.recorder.RecordSample(context.Background(), run.id, *accepted); err != nil {
			c.logger.Error("session: record sample failed", "session", run.id, "error", err)
		}
	}

	if changed {
		c.notify()
	}
	return live
}

// beginRecording 登记会话，返回该会话的样本是否需要持久化
func (c *Controller) beginRecording(run *sessionRun) bool {
	if c.recorder == nil {
		return false
	}

	info := SessionInfo{
		ID:        run.id,
		Endpoint:  c.config.Endpoint,
		StartedAt: run.startedAt,
	}
	if err := c.recorder.BeginSession(context.Background(), info); err != nil {
		c.logger.Error("session: record session failed", "session", run.id, "error", err)
		return false
	}
	return true
}

// finish 接收goroutine退出时登记会话结果
func (c *Controller) finish(run *sessionRun, recording bool) {
	c.mu.Lock()
	outcome, reason := run.outcome, run.reason
	c.mu.Unlock()

	if outcome == "" {
		outcome = outcomeStopped
	}
	c.logger.Debug("session: reader exited", "session", run.id, "outcome", outcome)

	if !recording {
		return
	}
	if err := c.recorder.EndSession(context.Background(), run.id, c.now(), outcome, reason); err != nil {
		c.logger.Error("session: record session end failed", "session", run.id, "error", err)
	}
}

// resetSessionLocked 新会话开始时清空上一次会话的数据，显示单位保持不变
func (c *Controller) resetSessionLocked() {
	c.history.Clear()
	c.current = core.Sample{}
	c.hasCurrent = false
	c.frame = nil
	c.stats = core.NewStats()
	c.info = ""
	c.calibration = core.Calibration{}
	c.updatedAt = time.Time{}
}

func (c *Controller) setStateLocked(s core.State, reason string) {
	c.state = s
	c.reason = reason
	c.metrics.setState(s)
}

// notify 发送变化通知，通道已满时合并
func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
