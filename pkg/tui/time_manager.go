// Package tui 时间管理模块
package tui

import (
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
)

// minWindowDuration 只有一个样本或样本时间相同时使用的窗口宽度
const minWindowDuration = time.Second

// getTimeWindow 历史样本覆盖的时间窗口，从最老样本到最新样本
func getTimeWindow(history []core.Sample) (start, end time.Time) {
	if len(history) == 0 {
		now := time.Now()
		return now.Add(-minWindowDuration), now
	}

	start = history[0].CapturedAt
	end = history[len(history)-1].CapturedAt
	if end.Sub(start) < minWindowDuration {
		end = start.Add(minWindowDuration)
	}
	return start, end
}

// timestampToX 将时间戳转换为X坐标
func timestampToX(timestamp time.Time, windowStart, windowEnd time.Time, chartWidth int) int {
	windowDuration := windowEnd.Sub(windowStart)
	if windowDuration == 0 {
		return 0
	}

	offset := timestamp.Sub(windowStart)
	if offset < 0 {
		return -1 // 在窗口左边界外
	}
	if offset > windowDuration {
		return chartWidth // 在窗口右边界外
	}

	// 将时间偏移转换为X坐标，最新样本落在最右一列
	x := int(float64(offset) / float64(windowDuration) * float64(chartWidth-1))
	return x
}
