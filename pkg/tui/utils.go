// Package tui 工具函数和辅助类型
package tui

import (
	"fmt"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/dustin/go-humanize"
)

// formatDistance 按显示单位格式化距离并带上单位符号
func formatDistance(meters float64, unit core.Unit) string {
	return unit.Format(meters) + " " + unit.String()
}

// getStateColor 根据会话状态获取对应的颜色
func getStateColor(state core.State) string {
	switch state {
	case core.StateConnecting:
		return "[yellow]"
	case core.StateActive:
		return "[green]"
	case core.StateFailed:
		return "[red]"
	default:
		return "[gray]"
	}
}

// getStateLabel 状态的中文显示名
func getStateLabel(state core.State) string {
	switch state {
	case core.StateIdle:
		return "空闲"
	case core.StateConnecting:
		return "连接中"
	case core.StateActive:
		return "测距中"
	case core.StateFailed:
		return "失败"
	default:
		return state.String()
	}
}

// formatFrameSize 图像大小，无图像时返回"-"
func formatFrameSize(frame []byte) string {
	if len(frame) == 0 {
		return "-"
	}
	return humanize.Bytes(uint64(len(frame)))
}

// formatAge 最近一次更新距今多久
func formatAge(updatedAt time.Time) string {
	if updatedAt.IsZero() {
		return "-"
	}
	return humanize.Time(updatedAt)
}

// shortID 截取会话ID的前8位
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatProgress 校准进度
func formatProgress(c core.Calibration) string {
	if c.Status == "" {
		return ""
	}
	if c.HasProgress {
		return fmt.Sprintf("%s (%.0f%%)", c.Status, c.Progress)
	}
	return c.Status
}

// abs 返回整数的绝对值
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
