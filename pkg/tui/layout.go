// Package tui 布局管理模块
package tui

import (
	"fmt"
	"strings"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = "[gray]s/Enter[white] 开始/停止  [gray]u[white] 切换单位  [gray]t/Tab[white] 图表/表格  [gray]q[white] 退出"

// setupUI 设置用户界面布局
func (t *TUI) setupUI() {
	t.status.SetDynamicColors(true)
	t.status.SetWordWrap(false)

	// 左侧：当前图像
	t.frameView.SetBorder(true)
	t.frameView.SetTitle(" 图像 ")
	noFrame := tview.NewTextView()
	noFrame.SetText("[gray]暂无图像[white]")
	noFrame.SetDynamicColors(true)
	noFrame.SetTextAlign(tview.AlignCenter)
	noFrame.SetBorder(true)
	noFrame.SetTitle(" 图像 ")

	t.frameArea = tview.NewPages()
	t.frameArea.AddPage(pageNoFrame, noFrame, true, true)
	t.frameArea.AddPage(pageFrame, t.frameView, true, false)

	// 右侧：历史图表和表格
	t.chart.SetWordWrap(false)
	t.chart.SetDynamicColors(true)
	t.chart.SetBorder(true)
	t.chart.SetTitle(" 历史 ")
	t.chart.SetText("[yellow]按 s 开始测距[white]")

	t.table.SetBorder(true)
	t.table.SetTitle(" 历史 ")
	t.table.SetFixed(1, 0)

	t.panels = tview.NewPages()
	t.panels.AddPage(pageChart, t.chart, true, true)
	t.panels.AddPage(pageTable, t.table, true, false)

	body := tview.NewFlex()
	body.SetDirection(tview.FlexColumn)
	body.AddItem(t.frameArea, 0, 2, false)
	body.AddItem(t.panels, 0, 3, false)

	// 底部：大号读数和汇总
	t.readout.SetDynamicColors(true)
	t.readout.SetTextAlign(tview.AlignCenter)
	t.readout.SetBorder(true)
	t.readout.SetTitle(" 当前距离 ")

	t.summary.SetDynamicColors(true)
	t.summary.SetTextAlign(tview.AlignCenter)

	help := tview.NewTextView()
	help.SetDynamicColors(true)
	help.SetTextAlign(tview.AlignCenter)
	help.SetText(helpText)

	// 创建主垂直布局
	t.flex = tview.NewFlex()
	t.flex.SetDirection(tview.FlexRow)
	t.flex.AddItem(t.status, 1, 0, false)
	if t.tuiConfig.ChartHeight > 0 {
		t.flex.AddItem(body, t.tuiConfig.ChartHeight, 0, false)
	} else {
		t.flex.AddItem(body, 0, 1, false)
	}
	t.flex.AddItem(t.readout, 3, 0, false)
	t.flex.AddItem(t.summary, 1, 0, false)
	t.flex.AddItem(help, 1, 0, false)

	t.render()
	t.app.SetRoot(t.flex, true)
}

// render 根据最新快照重画所有组件，只能在UI goroutine中调用
func (t *TUI) render() {
	if t.testMode {
		return
	}

	snap := t.currentSnapshot()

	t.status.SetText(t.statusLine(snap))
	t.renderFrame()
	t.renderHistory(snap)
	t.readout.SetText(readoutText(snap))
	t.summary.SetText(summaryText(buildSummary(snap)))
}

// statusLine 状态栏：状态、端点、会话、服务端消息、样本数、图像大小和更新时间
func (t *TUI) statusLine(snap core.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s● %s[white]", getStateColor(snap.State), getStateLabel(snap.State))
	fmt.Fprintf(&b, "  %s", snap.Endpoint)
	if snap.SessionID != "" {
		fmt.Fprintf(&b, "  [gray]#%s[white]", shortID(snap.SessionID))
	}

	switch {
	case snap.State == core.StateFailed && snap.Reason != "":
		fmt.Fprintf(&b, "  [red]%s[white]", tview.Escape(snap.Reason))
	case snap.Calibration.Status != "":
		fmt.Fprintf(&b, "  [yellow]%s[white]", tview.Escape(formatProgress(snap.Calibration)))
	case snap.Info != "":
		fmt.Fprintf(&b, "  %s", tview.Escape(snap.Info))
	}

	fmt.Fprintf(&b, "  样本 %d/%d", len(snap.History), snap.Capacity)
	fmt.Fprintf(&b, "  图像 %s", formatFrameSize(snap.Frame))
	fmt.Fprintf(&b, "  更新 %s", formatAge(snap.UpdatedAt))

	t.snapMu.RLock()
	lastErr := t.lastErr
	t.snapMu.RUnlock()
	if lastErr != "" {
		fmt.Fprintf(&b, "  [red]%s[white]", tview.Escape(lastErr))
	}

	return b.String()
}

// renderFrame 显示最近一次解码成功的图像
func (t *TUI) renderFrame() {
	img := t.currentFrame()
	if img == nil {
		t.frameArea.SwitchToPage(pageNoFrame)
		return
	}
	t.frameView.SetImage(img)
	t.frameArea.SwitchToPage(pageFrame)
}

// renderHistory 更新当前可见的历史面板
func (t *TUI) renderHistory(snap core.Snapshot) {
	if t.activePage == pageTable {
		t.renderTable(snap)
		return
	}

	_, _, width, height := t.chart.GetInnerRect()

	// 确保有合理的最小尺寸
	if width < t.tuiConfig.MinChartWidth {
		width = 80
	}
	if height < t.tuiConfig.MinChartHeight {
		height = 15
	}

	t.chart.SetText(t.drawHistoryChart(snap.History, snap.Unit, width, height))
}

// renderTable 历史表格，最新的样本在最上面
func (t *TUI) renderTable(snap core.Snapshot) {
	t.table.Clear()

	headers := []string{"#", "时间", "距离 (" + snap.Unit.String() + ")", "图像"}
	for col, h := range headers {
		t.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignCenter).
			SetSelectable(false))
	}

	for i, row := range historyRows(snap) {
		for col, text := range row {
			align := tview.AlignRight
			if col == 1 {
				align = tview.AlignLeft
			}
			t.table.SetCell(i+1, col, tview.NewTableCell(text).
				SetTextColor(tcell.ColorWhite).
				SetAlign(align).
				SetExpansion(1))
		}
	}
}

// historyRows 表格内容，按时间倒序
func historyRows(snap core.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.History))
	for i := len(snap.History) - 1; i >= 0; i-- {
		s := snap.History[i]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			s.CapturedAt.Format("15:04:05.000"),
			snap.Unit.Format(s.Distance),
			formatFrameSize(s.Frame),
		})
	}
	return rows
}

// readoutText 大号读数
func readoutText(snap core.Snapshot) string {
	color := "[white]"
	if snap.State != core.StateActive {
		color = "[gray]"
	}
	return fmt.Sprintf("%s[::b]%s %s[::-][white]", color, snap.Display(), snap.Unit.String())
}

// summaryText 汇总行
func summaryText(items []summaryItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("[yellow]%s[white] %s", item.Label, item.Value))
	}
	return strings.Join(parts, "   ")
}

// safeUIUpdate 安全地执行UI更新操作
func (t *TUI) safeUIUpdate(updateFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			// 如果应用已经停止，忽略panic
		}
	}()
	t.queueDraw(updateFunc)
}
