// Package tui 交互控制模块
package tui

import (
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/gdamore/tcell/v2"
)

// setupKeyBindings 设置键盘绑定
func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(t.handleKey)
}

// handleKey 处理按键，返回nil表示事件已被消费
func (t *TUI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlC:
		t.Stop()
		return nil
	case tcell.KeyEnter:
		t.toggleSession()
		return nil
	case tcell.KeyTab:
		t.switchPanel()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q', 'Q':
			t.Stop()
			return nil
		case 's', 'S':
			t.toggleSession()
			return nil
		case 'u', 'U':
			t.dataSource.ToggleUnit()
			return nil
		case 't', 'T':
			t.switchPanel()
			return nil
		}
	}
	return event
}

// toggleSession 开始或停止会话
// 失败状态下先Stop确认失败，再开始新会话
func (t *TUI) toggleSession() {
	now := time.Now()
	if !t.lastToggle.IsZero() && now.Sub(t.lastToggle) < t.tuiConfig.ToggleCooldown {
		return
	}
	t.lastToggle = now

	switch t.dataSource.Snapshot().State {
	case core.StateIdle:
		t.startSession()
	case core.StateFailed:
		t.dataSource.Stop()
		t.startSession()
	default:
		t.dataSource.Stop()
		t.setLastError("")
	}
}

// startSession 开始会话并记录失败原因
func (t *TUI) startSession() {
	if err := t.dataSource.Start(); err != nil {
		t.setLastError(err.Error())
		return
	}
	t.setLastError("")
}

func (t *TUI) setLastError(msg string) {
	t.snapMu.Lock()
	t.lastErr = msg
	t.snapMu.Unlock()
}

// switchPanel 在图表和表格之间切换
func (t *TUI) switchPanel() {
	if t.activePage == pageChart {
		t.activePage = pageTable
	} else {
		t.activePage = pageChart
	}

	if !t.testMode {
		t.panels.SwitchToPage(t.activePage)
		t.render()
	}
}
