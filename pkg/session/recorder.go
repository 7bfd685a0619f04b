package session

import (
	"context"
	"time"

	"github.com/Kevin-Rudy/godistance/pkg/core"
)

// SessionInfo 描述一次会话的元数据
type SessionInfo struct {
	ID        string
	Endpoint  string
	StartedAt time.Time
}

// Recorder 持久化会话和样本
// 控制器在接收goroutine中按到达顺序调用，调用时不持有控制器的锁
// 返回的错误只会被记录日志，不会影响会话
type Recorder interface {
	BeginSession(ctx context.Context, info SessionInfo) error
	RecordSample(ctx context.Context, sessionID string, s core.Sample) error
	EndSession(ctx context.Context, sessionID string, endedAt time.Time, outcome, reason string) error
}
