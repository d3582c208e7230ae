// Package metrics holds the Prometheus collectors of the bot
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bot. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	GateDenied       prometheus.Counter
	UsersRegistered  prometheus.Counter
	Resolutions      *prometheus.CounterVec
	ResolveDuration  prometheus.Histogram
	BroadcastSends   *prometheus.CounterVec
	Deletions        *prometheus.CounterVec
	PendingDeletions prometheus.Gauge
	AuditFailures    *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		GateDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkbot_gate_denied_total",
			Help: "Total number of requests rejected by the channel membership gate",
		}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "linkbot_users_registered_total",
			Help: "Total number of users newly added to the registry",
		}),
		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkbot_resolutions_total",
				Help: "Total number of link resolutions by result",
			},
			[]string{"result"},
		),
		ResolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "linkbot_resolve_duration_seconds",
			Help:    "Duration of calls to the resolution service",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),
		BroadcastSends: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkbot_broadcast_sends_total",
				Help: "Total number of broadcast sends by result",
			},
			[]string{"result"},
		),
		Deletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkbot_deletions_total",
				Help: "Total number of scheduled deletions fired by result",
			},
			[]string{"result"},
		),
		PendingDeletions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkbot_pending_deletions",
			Help: "Number of deletions waiting for their fire time",
		}),
		AuditFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkbot_audit_failures_total",
				Help: "Total number of failed audit mirror attempts by sink",
			},
			[]string{"sink"},
		),
	}
}

// GateDenial records a request rejected by the gate
func (m *Metrics) GateDenial() {
	if m == nil {
		return
	}
	m.GateDenied.Inc()
}

// UserRegistered records a newly registered user
func (m *Metrics) UserRegistered() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}

// Resolution records one classified resolution and its duration
func (m *Metrics) Resolution(result string, seconds float64) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(result).Inc()
	m.ResolveDuration.Observe(seconds)
}

// BroadcastSend records one broadcast recipient outcome
func (m *Metrics) BroadcastSend(ok bool) {
	if m == nil {
		return
	}
	m.BroadcastSends.WithLabelValues(outcome(ok)).Inc()
}

// Deletion records one fired deletion
func (m *Metrics) Deletion(ok bool) {
	if m == nil {
		return
	}
	m.Deletions.WithLabelValues(outcome(ok)).Inc()
}

// SetPendingDeletions updates the pending deletion gauge
func (m *Metrics) SetPendingDeletions(n int) {
	if m == nil {
		return
	}
	m.PendingDeletions.Set(float64(n))
}

// AuditFailure records a failed audit sink
func (m *Metrics) AuditFailure(sink string) {
	if m == nil {
		return
	}
	m.AuditFailures.WithLabelValues(sink).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
