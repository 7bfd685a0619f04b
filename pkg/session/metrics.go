package session

import (
	"github.com/Kevin-Rudy/godistance/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
)

// 会话结束的结果标签
const (
	outcomeStarted = "started"
	outcomeStopped = "stopped"
	outcomeFailed  = "failed"
)

// Metrics 会话控制器的Prometheus指标
// nil *Metrics 是合法的，所有方法都是无操作
type Metrics struct {
	messages     *prometheus.CounterVec
	accepted     prometheus.Counter
	discarded    prometheus.Counter
	sessions     *prometheus.CounterVec
	state        prometheus.Gauge
	lastDistance prometheus.Gauge
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "godistance_messages_total",
			Help: "Inbound messages by decoded kind.",
		}, []string{"kind"}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "godistance_samples_accepted_total",
			Help: "Measurements admitted into the history buffer.",
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "godistance_samples_discarded_total",
			Help: "Measurements dropped because of a negative distance.",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "godistance_sessions_total",
			Help: "Session lifecycle events by outcome.",
		}, []string{"outcome"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "godistance_session_state",
			Help: "Current session state (0=idle, 1=connecting, 2=active, 3=failed).",
		}),
		lastDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "godistance_last_distance_meters",
			Help: "Distance of the most recently accepted measurement.",
		}),
	}

	reg.MustRegister(m.messages, m.accepted, m.discarded, m.sessions, m.state, m.lastDistance)

	return m
}

func (m *Metrics) observeMessage(kind MessageKind) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) sampleAccepted(distance float64) {
	if m == nil {
		return
	}
	m.accepted.Inc()
	m.lastDistance.Set(distance)
}

func (m *Metrics) sampleDiscarded() {
	if m == nil {
		return
	}
	m.discarded.Inc()
}

func (m *Metrics) sessionEvent(outcome string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) setState(s core.State) {
	if m == nil {
		return
	}
	m.state.Set(float64(s))
}
