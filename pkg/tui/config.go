// Package tui 配置定义
package tui

import (
	"errors"
	"time"
)

// Config TUI组件的配置结构
type Config struct {
	RefreshInterval  time.Duration // UI刷新间隔
	ToggleCooldown   time.Duration // 启停按键的最小间隔
	MinChartWidth    int           // 最小图表宽度
	MinChartHeight   int           // 最小图表高度
	ChartHeight      int           // 图表区域高度，0表示占满剩余空间
	ValueBufferRatio float64       // 值缓冲比例
	MaxChartSize     int           // 最大图表尺寸（防止极端值）
	AutoStart        bool          // 启动界面后立即开始会话
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval:  200 * time.Millisecond, // 默认200ms刷新
		ToggleCooldown:   300 * time.Millisecond, // 过滤按键连发
		MinChartWidth:    20,                     // 最小图表宽度
		MinChartHeight:   5,                      // 最小图表高度
		ChartHeight:      0,
		ValueBufferRatio: 0.1,  // 10%缓冲
		MaxChartSize:     1000, // 最大图表尺寸
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("UI刷新间隔必须大于0")
	}

	if c.RefreshInterval < 10*time.Millisecond {
		return errors.New("UI刷新间隔不能小于10ms")
	}

	if c.ToggleCooldown < 0 {
		return errors.New("启停按键间隔不能为负数")
	}

	if c.MinChartWidth <= 0 {
		return errors.New("最小图表宽度必须大于0")
	}

	if c.MinChartHeight <= 0 {
		return errors.New("最小图表高度必须大于0")
	}

	if c.ChartHeight < 0 {
		return errors.New("图表高度不能为负数")
	}

	if c.ChartHeight > 0 && c.ChartHeight < c.MinChartHeight {
		return errors.New("图表高度不能小于最小图表高度")
	}

	if c.ValueBufferRatio < 0 {
		return errors.New("值缓冲比例不能为负数")
	}

	if c.MaxChartSize <= 0 {
		return errors.New("最大图表尺寸必须大于0")
	}

	return nil
}
