// Package tui 数据处理模块
package tui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // 注册JPEG解码器
	_ "image/png"  // 注册PNG解码器
	"math"

	"github.com/Kevin-Rudy/godistance/pkg/core"
)

// summaryItem 汇总行中的一项
type summaryItem struct {
	Label string
	Value string
}

// applySnapshot 保存快照，图像字节变化时重新解码
// 解码失败时保留上一帧图像
func (t *TUI) applySnapshot(snap core.Snapshot) {
	t.snapMu.Lock()
	defer t.snapMu.Unlock()

	t.snap = snap

	if len(snap.Frame) == 0 {
		// 新会话开始时控制器会清空图像
		t.frameBytes = nil
		t.frameImage = nil
		return
	}

	if bytes.Equal(snap.Frame, t.frameBytes) {
		return
	}
	t.frameBytes = snap.Frame

	img, err := decodeFrame(snap.Frame)
	if err != nil {
		return
	}
	t.frameImage = img
}

// currentSnapshot 返回界面持有的最新快照
func (t *TUI) currentSnapshot() core.Snapshot {
	t.snapMu.RLock()
	defer t.snapMu.RUnlock()
	return t.snap
}

// currentFrame 返回最近一次成功解码的图像
func (t *TUI) currentFrame() image.Image {
	t.snapMu.RLock()
	defer t.snapMu.RUnlock()
	return t.frameImage
}

// decodeFrame 把服务端发送的图像字节解码为image.Image
func decodeFrame(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("图像解码失败: %w", err)
	}
	return img, nil
}

// buildSummary 计算汇总行，数值按显示单位格式化
func buildSummary(snap core.Snapshot) []summaryItem {
	stats := snap.Stats
	unit := snap.Unit

	format := func(meters float64) string {
		if math.IsNaN(meters) || math.IsInf(meters, 0) {
			return "N/A"
		}
		return formatDistance(meters, unit)
	}

	minValue, maxValue := math.NaN(), math.NaN()
	if stats.Accepted() > 0 {
		minValue, maxValue = stats.MinDistance, stats.MaxDistance
	}

	return []summaryItem{
		{"样本", fmt.Sprintf("%d", stats.Accepted())},
		{"丢弃", fmt.Sprintf("%d", stats.Discarded)},
		{"平均", format(stats.Mean())},
		{"最小", format(minValue)},
		{"最大", format(maxValue)},
		{"标准差", format(stats.StdDev())},
	}
}
