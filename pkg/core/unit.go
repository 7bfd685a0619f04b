package core

import (
	"fmt"
	"math"
	"strings"
)

// Unit 表示距离的显示单位，内部统一使用米
type Unit int

const (
	Meters      Unit = iota // 米，保留两位小数
	Centimeters             // 厘米，四舍五入到整数
)

// Toggle 在米和厘米之间切换，两次切换回到原单位
func (u Unit) Toggle() Unit {
	if u == Meters {
		return Centimeters
	}
	return Meters
}

// String 返回单位符号
func (u Unit) String() string {
	if u == Centimeters {
		return "cm"
	}
	return "m"
}

// Scale 将以米为单位的距离换算成当前单位下的数值
func (u Unit) Scale(meters float64) float64 {
	if u == Centimeters {
		return meters * 100
	}
	return meters
}

// Format 按当前单位格式化以米为单位的距离
func (u Unit) Format(meters float64) string {
	return Format(meters, u)
}

// Format 将以米为单位的距离格式化为指定单位的显示字符串
func Format(meters float64, u Unit) string {
	if u == Centimeters {
		// math.Round 远离零取整，与常见的toFixed(0)行为一致
		return fmt.Sprintf("%.0f", math.Round(meters*100))
	}
	return fmt.Sprintf("%.2f", meters)
}

// ParseUnit 解析单位字符串，支持 m/meters 和 cm/centimeters
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters":
		return Meters, nil
	case "cm", "centimeter", "centimeters":
		return Centimeters, nil
	default:
		return Meters, fmt.Errorf("未知的距离单位 '%s'，可选值为 m 或 cm", s)
	}
}
