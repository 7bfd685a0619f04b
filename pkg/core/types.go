// Package core 定义了测距客户端的核心接口和数据结构
// 这些接口保证了TUI与具体会话实现的完全解耦
package core

import (
	"time"
)

// Sample 表示一次解码并通过校验的服务端测量结果
// 只由会话控制器的解码步骤构造，构造后不再修改
type Sample struct {
	CapturedAt time.Time // 客户端接收时间（服务端不发送自己的时间戳）
	Distance   float64   // 距离(米)，始终 >= 0
	Frame      []byte    // 可选的编码图像，服务端未携带时为nil
}

// HasFrame 判断样本是否携带图像
func (s Sample) HasFrame() bool {
	return len(s.Frame) > 0
}

// State 表示会话的生命周期状态
type State int

const (
	StateIdle       State = iota // 空闲，没有连接
	StateConnecting              // 正在建立连接
	StateActive                  // 连接已确认打开，正在接收数据
	StateFailed                  // 传输错误或服务端报错，等待用户停止
)

// String 返回状态的可读名称
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Live 判断该状态下是否持有（或正在获取）传输连接
func (s State) Live() bool {
	return s == StateConnecting || s == StateActive
}

// Calibration 表示服务端上报的校准进度
type Calibration struct {
	Status      string  // 服务端给出的校准状态描述
	Progress    float64 // 进度百分比(0-100)
	HasProgress bool    // 消息是否携带了进度字段
}

// Snapshot 表示会话状态的不可变快照
// 由控制器在锁内复制生成，视图层只读取快照，不直接接触控制器内部状态
type Snapshot struct {
	State     State
	Reason    string // 仅在StateFailed时有意义
	SessionID string
	Endpoint  string
	Unit      Unit

	// --- 当前测量 ---
	Current    Sample
	HasCurrent bool
	Frame      []byte // 最近一次解码出的图像，没有新图像时保持不变

	// --- 用于图表和表格显示的近期历史 ---
	History  []Sample
	Capacity int // 历史缓冲区容量

	// --- 会话级统计 ---
	Stats Stats

	// --- 诊断信息 ---
	Info        string
	Calibration Calibration
	UpdatedAt   time.Time
}

// Display 返回按当前显示单位格式化的距离，没有测量时返回"--"
func (s Snapshot) Display() string {
	if !s.HasCurrent {
		return "--"
	}
	return s.Unit.Format(s.Current.Distance)
}

// DataSource 定义了测量会话的标准接口
// TUI只依赖这个接口，不关心底层传输的具体实现
type DataSource interface {
	// Start 启动一次新的会话
	// 这个方法应该是非阻塞的，实际的连接和接收工作在后台goroutine中进行
	Start() error

	// Stop 结束当前会话并释放连接，在空闲状态下调用是无操作
	Stop()

	// ToggleUnit 在米和厘米之间切换显示单位，返回切换后的单位
	ToggleUnit() Unit

	// Snapshot 返回当前会话状态的不可变快照
	Snapshot() Snapshot

	// Changes 返回一个只读通道，状态变化时会收到通知
	// 通知会被合并，接收方应该在收到通知后重新读取Snapshot
	Changes() <-chan struct{}
}
