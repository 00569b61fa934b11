package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit chain.
type Metrics struct {
	AppendsTotal    *prometheus.CounterVec
	HeadConflicts   prometheus.Counter
	VerifyDivergent prometheus.Counter
	AppendLatency   prometheus.Histogram
}

// New creates and registers all audit chain metrics.
func New() *Metrics {
	return &Metrics{
		AppendsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftguard_audit_appends_total",
			Help: "Audit chain appends by action and outcome",
		}, []string{"action", "outcome"}),

		HeadConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiftguard_audit_head_conflicts_total",
			Help: "Appends retried because the chain head moved underneath them",
		}),

		VerifyDivergent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiftguard_audit_verify_divergences_total",
			Help: "Chain verifications that reported a divergence",
		}),

		AppendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftguard_audit_append_duration_seconds",
			Help:    "Duration of audit chain appends including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveAppend records one append attempt outcome.
func (m *Metrics) ObserveAppend(action, outcome string, d time.Duration) {
	if m != nil {
		m.AppendsTotal.WithLabelValues(action, outcome).Inc()
		m.AppendLatency.Observe(d.Seconds())
	}
}

// IncrementHeadConflict records a lost append race.
func (m *Metrics) IncrementHeadConflict() {
	if m != nil {
		m.HeadConflicts.Inc()
	}
}

// IncrementVerifyDivergent records a failed chain verification.
func (m *Metrics) IncrementVerifyDivergent() {
	if m != nil {
		m.VerifyDivergent.Inc()
	}
}
