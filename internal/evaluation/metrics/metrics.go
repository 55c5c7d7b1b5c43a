package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evaluation module.
type Metrics struct {
	// Evaluation outcomes by status and population
	Outcomes *prometheus.CounterVec

	// Violations by constraint and severity
	Violations *prometheus.CounterVec

	// Engine evaluation latency
	EvaluateLatency prometheus.Histogram

	// Requests per batch
	BatchSize prometheus.Histogram

	// History persistence failures
	StoreErrors prometheus.Counter
}

// New registers the evaluation metrics with reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curaframe_evaluation_outcomes_total",
			Help: "Total evaluation outcomes by status and population",
		}, []string{"status", "population"}),

		Violations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "curaframe_constraint_violations_total",
			Help: "Total constraint violations by constraint and severity",
		}, []string{"constraint", "severity"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "curaframe_evaluation_duration_seconds",
			Help:    "Duration of a single candidate evaluation",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1},
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "curaframe_evaluation_batch_size",
			Help:    "Number of candidates per batch evaluation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),

		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "curaframe_history_store_errors_total",
			Help: "Failures persisting evaluation results",
		}),
	}
}

// IncrementOutcome records an evaluation outcome. The population label is
// "none" for general evaluations.
func (m *Metrics) IncrementOutcome(status, population string) {
	if m != nil {
		if population == "" {
			population = "none"
		}
		m.Outcomes.WithLabelValues(status, population).Inc()
	}
}

// IncrementViolation records a failed constraint.
func (m *Metrics) IncrementViolation(constraint, severity string) {
	if m != nil {
		m.Violations.WithLabelValues(constraint, severity).Inc()
	}
}

// ObserveEvaluateLatency records the engine evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

func (m *Metrics) IncrementStoreError() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}
