// Package tui 提供测距会话的终端用户界面
// 界面只读取数据源的快照，所有状态修改都通过core.DataSource的方法完成
package tui

import (
	"image"
	"sync"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/rivo/tview"
)

// 右侧面板的页面名称
const (
	pageChart = "chart"
	pageTable = "table"

	pageFrame   = "frame"
	pageNoFrame = "empty"
)

// TUI 主界面结构
type TUI struct {
	app        *tview.Application
	flex       *tview.Flex
	status     *tview.TextView
	frameArea  *tview.Pages
	frameView  *tview.Image
	panels     *tview.Pages
	chart      *tview.TextView
	table      *tview.Table
	readout    *tview.TextView
	summary    *tview.TextView
	dataSource core.DataSource

	// 配置信息
	tuiConfig *Config

	// 最近一次快照及解码后的图像
	snapMu     sync.RWMutex
	snap       core.Snapshot
	frameBytes []byte
	frameImage image.Image
	lastErr    string

	// 界面状态
	activePage string
	lastToggle time.Time

	// 控制
	stopChan   chan struct{}
	doneChan   chan struct{}
	redrawChan chan struct{}
	stopOnce   sync.Once

	// 应用主循环和绘制入口，测试时可替换
	runLoop   func() error
	queueDraw func(func())

	// 测试模式标志
	testMode bool
}

// NewTUI 创建新的TUI实例
func NewTUI(dataSource core.DataSource, tuiConfig *Config) *TUI {
	tui := &TUI{
		app:        tview.NewApplication(),
		status:     tview.NewTextView(),
		frameView:  tview.NewImage(),
		chart:      tview.NewTextView(),
		table:      tview.NewTable(),
		readout:    tview.NewTextView(),
		summary:    tview.NewTextView(),
		dataSource: dataSource,
		tuiConfig:  tuiConfig,
		snap:       dataSource.Snapshot(),
		activePage: pageChart,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		redrawChan: make(chan struct{}, 1),
	}
	tui.runLoop = tui.app.Run
	tui.queueDraw = func(f func()) { tui.app.QueueUpdateDraw(f) }

	tui.setupUI()
	tui.setupKeyBindings()

	return tui
}

// NewTUIForTest 创建用于测试的TUI实例（不初始化图形组件）
func NewTUIForTest(dataSource core.DataSource, tuiConfig *Config) *TUI {
	tui := &TUI{
		app:        tview.NewApplication(), // 创建一个应用实例，但不会运行
		dataSource: dataSource,
		tuiConfig:  tuiConfig,
		snap:       dataSource.Snapshot(),
		activePage: pageChart,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		redrawChan: make(chan struct{}, 1),
		testMode:   true,
	}
	tui.runLoop = tui.app.Run
	tui.queueDraw = func(f func()) { tui.app.QueueUpdateDraw(f) }
	return tui
}

// Run 启动TUI界面，阻塞到用户退出
func (t *TUI) Run() error {
	if t.tuiConfig.AutoStart {
		t.startSession()
	}

	// 启动数据处理和绘制goroutine
	go t.processData()
	go t.drawLoop()

	// 运行应用
	err := t.runLoop()

	// 应用异常退出时也要让processData结束
	// drawLoop可能阻塞在一个永远不会执行的绘制请求上，不等待它
	t.shutdown()
	<-t.doneChan

	return err
}

// Stop 停止TUI界面和当前会话
func (t *TUI) Stop() {
	t.shutdown()

	// 停止数据源
	t.dataSource.Stop()

	// 停止应用
	t.app.Stop()
}

func (t *TUI) shutdown() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
	})
}

// processData 处理来自数据源的变化通知，并按固定间隔刷新界面
func (t *TUI) processData() {
	defer close(t.doneChan)

	changes := t.dataSource.Changes()
	uiTicker := time.NewTicker(t.tuiConfig.RefreshInterval)
	defer uiTicker.Stop()

	// 初始UI刷新
	t.handleDataUpdate()

	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
			t.handleDataUpdate()

		case <-uiTicker.C:
			// 样本时间等显示随时间变化，没有新数据也要重画
			t.handleUIRefresh()

		case <-t.stopChan:
			return
		}
	}
}

// handleDataUpdate 读取最新快照并刷新界面
func (t *TUI) handleDataUpdate() {
	t.applySnapshot(t.dataSource.Snapshot())
	t.handleUIRefresh()
}

// handleUIRefresh 请求一次重画，不等待绘制完成
// 已有未处理的请求时合并
func (t *TUI) handleUIRefresh() {
	if t.testMode || t.app == nil {
		return
	}
	select {
	case t.redrawChan <- struct{}{}:
	default:
	}
}

// drawLoop 把重画请求交给应用主循环
// QueueUpdateDraw要等主循环执行完才返回，所以不能在processData里调用
func (t *TUI) drawLoop() {
	for {
		select {
		case <-t.redrawChan:
			t.safeUIUpdate(t.render)
		case <-t.stopChan:
			return
		}
	}
}
