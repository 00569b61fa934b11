package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance module.
type Metrics struct {
	// Rule outcomes by rule and severity ("" for a clean pass)
	RuleOutcome *prometheus.CounterVec

	// Full validateAll latency including context gathering
	ValidateLatency prometheus.Histogram

	// Contexts rejected as unevaluable
	InvalidInput prometheus.Counter
}

// New creates a Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		RuleOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftguard_compliance_rule_outcomes_total",
			Help: "Rule verdicts by rule, result, and severity",
		}, []string{"rule", "result", "severity"}),

		ValidateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shiftguard_compliance_validate_duration_seconds",
			Help:    "Duration of full validation including entry resolution",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		InvalidInput: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shiftguard_compliance_invalid_input_total",
			Help: "Validation contexts rejected as unevaluable",
		}),
	}
}

// ObserveRule records one rule verdict.
func (m *Metrics) ObserveRule(rule, result, severity string) {
	if m != nil {
		m.RuleOutcome.WithLabelValues(rule, result, severity).Inc()
	}
}

// ObserveValidate records the total validation duration.
func (m *Metrics) ObserveValidate(d time.Duration) {
	if m != nil {
		m.ValidateLatency.Observe(d.Seconds())
	}
}

// IncrementInvalidInput records a rejected context.
func (m *Metrics) IncrementInvalidInput() {
	if m != nil {
		m.InvalidInput.Inc()
	}
}
