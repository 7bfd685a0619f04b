package core

// HistoryCapacity 历史缓冲区的默认容量
const HistoryCapacity = 10

// History 有容量上限的滚动缓冲区，按插入顺序保存样本（最老的在前）
// History 不是并发安全的，由唯一的拥有者（会话控制器）负责串行访问
type History struct {
	capacity int
	samples  []Sample
}

// NewHistory 创建新的历史缓冲区，capacity <= 0 时使用默认容量
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &History{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
	}
}

// Push 追加样本，超过容量时移除最老的样本
func (h *History) Push(s Sample) {
	if len(h.samples) < h.capacity {
		h.samples = append(h.samples, s)
		return
	}

	// 缓冲区已满，整体左移一位后写入末尾，底层数组不再增长
	copy(h.samples, h.samples[1:])
	h.samples[len(h.samples)-1] = s
}

// Snapshot 返回当前样本序列的副本
func (h *History) Snapshot() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Clear 清空缓冲区
func (h *History) Clear() {
	for i := range h.samples {
		h.samples[i] = Sample{}
	}
	h.samples = h.samples[:0]
}

// Len 返回当前样本数量
func (h *History) Len() int {
	return len(h.samples)
}

// Cap 返回缓冲区容量
func (h *History) Cap() int {
	return h.capacity
}

// Last 返回最新的样本
func (h *History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}
