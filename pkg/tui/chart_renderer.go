// Package tui 图表渲染模块
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Kevin-Rudy/godistance/pkg/core"
)

// chartColor 历史折线的颜色
const chartColor = "[green]"

// brailleDotMap 盲文点阵的映射关系 (2x4 grid)
var brailleDotMap = [4][2]int{
	{0b00000001, 0b00001000}, // (y:0, x:0), (y:0, x:1)
	{0b00000010, 0b00010000}, // (y:1, x:0), (y:1, x:1)
	{0b00000100, 0b00100000}, // (y:2, x:0), (y:2, x:1)
	{0b01000000, 0b10000000}, // (y:3, x:0), (y:3, x:1)
}

// brailleCell 定义盲文字符的cell结构
type brailleCell struct {
	char  int
	color string
}

// validateChartSize 验证图表尺寸是否合理
func (t *TUI) validateChartSize(width, height int) string {
	if height < t.tuiConfig.MinChartHeight || width < t.tuiConfig.MinChartWidth {
		return "终端尺寸过小"
	}
	if width > t.tuiConfig.MaxChartSize || height > t.tuiConfig.MaxChartSize {
		return "终端尺寸过大"
	}
	return ""
}

// calculateValueRange 计算历史距离的值范围（单位：米）
func (t *TUI) calculateValueRange(history []core.Sample) (minVal, maxVal, valueRange float64, errMsg string) {
	var valid []float64
	for _, s := range history {
		if !math.IsNaN(s.Distance) && !math.IsInf(s.Distance, 0) {
			valid = append(valid, s.Distance)
		}
	}

	if len(valid) == 0 {
		return 0, 0, 0, "没有有效数据"
	}

	minVal, maxVal = valid[0], valid[0]
	for _, v := range valid {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	// 如果所有值都一样，上下各留出10cm
	if maxVal == minVal {
		maxVal += 0.1
		minVal -= 0.1
	}

	// 采用缓冲算法
	maxVal = maxVal + maxVal*t.tuiConfig.ValueBufferRatio
	minVal = minVal - minVal*t.tuiConfig.ValueBufferRatio
	if minVal < 0 {
		minVal = 0
	}

	valueRange = maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	return minVal, maxVal, valueRange, ""
}

// drawHistoryChart 绘制历史距离折线图，Y轴使用显示单位，X轴为样本时间
func (t *TUI) drawHistoryChart(history []core.Sample, unit core.Unit, width, height int) string {
	if len(history) == 0 {
		return "没有数据"
	}

	// 检查图表尺寸是否合理
	if sizeErr := t.validateChartSize(width, height); sizeErr != "" {
		return sizeErr
	}

	windowStart, windowEnd := getTimeWindow(history)

	// 计算值范围
	minVal, maxVal, valueRange, err := t.calculateValueRange(history)
	if err != "" {
		return err
	}

	// 动态计算Y轴标签宽度
	topLabel := unit.Format(maxVal)
	bottomLabel := unit.Format(minVal)
	maxLabelLen := len(topLabel)
	if len(bottomLabel) > maxLabelLen {
		maxLabelLen = len(bottomLabel)
	}
	yAxisLabelWidth := maxLabelLen + 2 // +2 为│分隔符和右侧空格留出缓冲

	// 准备画布尺寸
	chartBodyHeight := height - 2 // 为X轴和时间戳留出2行空间
	chartWidth := width - yAxisLabelWidth

	// 确保画布尺寸合理
	if chartBodyHeight <= 0 || chartWidth <= 0 {
		return "可绘制区域过小"
	}

	// 创建盲文画布
	canvas := make([][]brailleCell, chartWidth)
	for i := range canvas {
		canvas[i] = make([]brailleCell, chartBodyHeight)
	}

	lastX, lastY := -1, -1
	for _, s := range history {
		if math.IsNaN(s.Distance) || math.IsInf(s.Distance, 0) {
			continue
		}

		// 计算X坐标（基于时间戳，使用高分辨率）
		currX := timestampToX(s.CapturedAt, windowStart, windowEnd, chartWidth*2)
		if currX < 0 || currX >= chartWidth*2 {
			continue
		}

		// 计算Y坐标
		normalized := (s.Distance - minVal) / valueRange
		currY := int((1.0 - normalized) * float64(chartBodyHeight*4-1))

		// 边界检查（高分辨率坐标）
		if currY < 0 {
			currY = 0
		} else if currY >= chartBodyHeight*4 {
			currY = chartBodyHeight*4 - 1
		}

		if lastX != -1 {
			drawBrailleLine(canvas, lastX, lastY, currX, currY, chartBodyHeight*4, chartWidth*2, chartColor)
		} else {
			setBrailleDot(canvas, currX, currY, chartColor)
		}

		lastX, lastY = currX, currY
	}

	// 构建输出字符串
	var lines []string

	// 预先计算Y轴标签位置
	yAxisLabelCount := 5
	if chartBodyHeight < yAxisLabelCount {
		yAxisLabelCount = chartBodyHeight
	}

	yAxisLabels := make(map[int]string)
	if yAxisLabelCount > 1 {
		for i := 0; i < yAxisLabelCount; i++ {
			// 在数值上均匀分布
			normalized := float64(i) / float64(yAxisLabelCount-1)
			value := maxVal - normalized*valueRange
			pixelRow := int(normalized * float64(chartBodyHeight-1))
			yAxisLabels[pixelRow] = unit.Format(value)
		}
	}

	// 绘制Y轴和图表主体
	for i := 0; i < chartBodyHeight; i++ {
		line := fmt.Sprintf("[gray]%*s[white] [gray]│[white]", yAxisLabelWidth-2, yAxisLabels[i])

		for j := 0; j < chartWidth; j++ {
			cell := canvas[j][i]
			if cell.char == 0 {
				line += " "
			} else {
				line += cell.color + string(rune(0x2800+cell.char)) + "[white]"
			}
		}
		lines = append(lines, line)
	}

	// 绘制X轴
	xAxisLine := fmt.Sprintf("%-*s└%s", yAxisLabelWidth-1, "", strings.Repeat("─", chartWidth))
	lines = append(lines, "[gray]"+xAxisLine+"[white]")

	// X轴时间刻度，从最老样本到最新样本
	startTimeStr := windowStart.Format("15:04:05")
	endTimeStr := windowEnd.Format("15:04:05")

	spaceCount := chartWidth - len(startTimeStr) - len(endTimeStr)
	if spaceCount < 1 {
		spaceCount = 1
	}
	timeLine := fmt.Sprintf("%-*s%s%*s%s", yAxisLabelWidth, "", startTimeStr, spaceCount, "", endTimeStr)
	lines = append(lines, "[gray]"+timeLine+"[white]")

	// 确保输出不会超过可用高度，保证X轴总是可见
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// setBrailleDot 在高分辨率坐标(x, y)处点亮一个盲文点
func setBrailleDot(canvas [][]brailleCell, x, y int, color string) {
	canvasX := x / 2
	canvasY := y / 4
	if canvasX < 0 || canvasX >= len(canvas) || canvasY < 0 || canvasY >= len(canvas[0]) {
		return
	}
	canvas[canvasX][canvasY].char |= brailleDotMap[y%4][x%2]
	canvas[canvasX][canvasY].color = color
}

// drawBrailleLine 使用布雷森汉姆算法在盲文画布上绘制线段
func drawBrailleLine(canvas [][]brailleCell, x1, y1, x2, y2, maxHeight, maxWidth int, color string) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	x, y := x1, y1
	for {
		if y >= 0 && y < maxHeight && x >= 0 && x < maxWidth {
			setBrailleDot(canvas, x, y, color)
		}

		// 检查是否到达终点
		if x == x2 && y == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}
