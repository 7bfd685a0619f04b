package core

import (
	"math"
)

// Stats 会话级的全局统计累加器
// 与History不同，Stats覆盖整个会话，不受缓冲区容量限制
type Stats struct {
	Discarded int // 被丢弃的测量消息数（负距离）

	// Welford's Online Algorithm 所需的累加器
	WelfordCount int64   // 已接受的样本数
	WelfordMean  float64 // 均值
	WelfordM2    float64 // M2值

	// 全局最大/最小值
	MinDistance float64
	MaxDistance float64
}

// NewStats 创建一个新的Stats实例
func NewStats() Stats {
	return Stats{
		MinDistance: math.Inf(1),  // 初始化为正无穷
		MaxDistance: math.Inf(-1), // 初始化为负无穷
	}
}

// Observe 记录一个已接受的距离值
func (s *Stats) Observe(distance float64) {
	s.WelfordCount++
	delta := distance - s.WelfordMean
	s.WelfordMean += delta / float64(s.WelfordCount)
	delta2 := distance - s.WelfordMean
	s.WelfordM2 += delta * delta2

	if distance < s.MinDistance {
		s.MinDistance = distance
	}
	if distance > s.MaxDistance {
		s.MaxDistance = distance
	}
}

// Discard 记录一个被丢弃的测量
func (s *Stats) Discard() {
	s.Discarded++
}

// Accepted 返回已接受的样本数
func (s Stats) Accepted() int {
	return int(s.WelfordCount)
}

// Mean 返回均值，没有样本时返回NaN
func (s Stats) Mean() float64 {
	if s.WelfordCount == 0 {
		return math.NaN()
	}
	return s.WelfordMean
}

// StdDev 返回样本标准差，样本少于两个时返回NaN
func (s Stats) StdDev() float64 {
	if s.WelfordCount < 2 {
		return math.NaN()
	}
	return math.Sqrt(s.WelfordM2 / float64(s.WelfordCount-1))
}
