package session

import (
	"testing"

	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsRecordSession 测试会话过程中的指标
func TestMetricsRecordSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	conn := newFakeConn()
	c := newTestController(t, &fakeDialer{conns: []*fakeConn{conn}}, WithMetrics(metrics))

	_ = c.Start()
	waitFor(t, "active", inState(core.StateActive), c)

	if got := testutil.ToFloat64(metrics.state); got != float64(core.StateActive) {
		t.Errorf("Expected state gauge %d, got %f", core.StateActive, got)
	}

	conn.send(`{"message": "Camera initialized"}`)
	conn.send(`{"distance": 1.5}`)
	conn.send(`{"distance": -1}`)
	conn.send(`garbage`)
	conn.send(`{"distance": 0.7}`)
	waitFor(t, "two samples", acceptedCount(2), c)

	if got := testutil.ToFloat64(metrics.accepted); got != 2 {
		t.Errorf("Expected 2 accepted, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.discarded); got != 1 {
		t.Errorf("Expected 1 discarded, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.lastDistance); got != 0.7 {
		t.Errorf("Expected last distance 0.7, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.messages.WithLabelValues("measurement")); got != 3 {
		t.Errorf("Expected 3 measurement messages, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.messages.WithLabelValues("unknown")); got != 1 {
		t.Errorf("Expected 1 unknown message, got %f", got)
	}

	c.Stop()
	if got := testutil.ToFloat64(metrics.sessions.WithLabelValues(outcomeStarted)); got != 1 {
		t.Errorf("Expected 1 started session, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.sessions.WithLabelValues(outcomeStopped)); got != 1 {
		t.Errorf("Expected 1 stopped session, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.state); got != float64(core.StateIdle) {
		t.Errorf("Expected idle state gauge, got %f", got)
	}
}

// TestMetricsIgnoreStaleMessages 测试已结束会话的消息不计入指标
func TestMetricsIgnoreStaleMessages(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	conn := newFakeConn()
	c := newTestController(t, &fakeDialer{conns: []*fakeConn{conn}}, WithMetrics(metrics))

	_ = c.Start()
	waitFor(t, "active", inState(core.StateActive), c)

	conn.send(`{"distance": 1.5}`)
	waitFor(t, "one sample", acceptedCount(1), c)

	c.mu.Lock()
	stale := c.run
	c.mu.Unlock()
	c.Stop()

	// 读取goroutine在Stop之前已经拿到的消息
	if live := c.handle(stale, []byte(`{"distance": 2.0}`), false); live {
		t.Error("A message for a stopped session should not keep it live")
	}
	if live := c.handle(stale, []byte(`{"message": "late"}`), false); live {
		t.Error("A message for a stopped session should not keep it live")
	}

	if got := testutil.ToFloat64(metrics.messages.WithLabelValues("measurement")); got != 1 {
		t.Errorf("Expected only the live measurement to be counted, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.messages.WithLabelValues("info")); got != 0 {
		t.Errorf("Expected no info messages counted, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.accepted); got != 1 {
		t.Errorf("Expected 1 accepted, got %f", got)
	}
}

// TestNilMetrics 测试nil指标不会panic
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.observeMessage(KindInfo)
	m.sampleAccepted(1)
	m.sampleDiscarded()
	m.sessionEvent(outcomeFailed)
	m.setState(core.StateFailed)
}
