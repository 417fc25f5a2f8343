package rbacmiddleware

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives the outcome of every credential check. Outcomes are
// the core error codes plus "granted".
type Metrics interface {
	IncCheckOutcome(outcome string)
	ObserveValidationDuration(seconds float64)
}

// NoopMetrics is the default Metrics implementation; it records nothing.
type NoopMetrics struct{}

func (NoopMetrics) IncCheckOutcome(string)            {}
func (NoopMetrics) ObserveValidationDuration(float64) {}

// PrometheusMetrics implements Metrics on top of Prometheus.
type PrometheusMetrics struct {
	checks   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewPrometheusMetrics builds and registers the middleware collectors on
// the given registerer. Pass nil to use the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbac_credential_checks_total",
			Help: "Credential checks by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rbac_token_validation_seconds",
			Help:    "Time spent validating bearer tokens.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, collector := range []prometheus.Collector{m.checks, m.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("could not register collector: %w", err)
		}
	}

	return m, nil
}

func (m *PrometheusMetrics) IncCheckOutcome(outcome string) {
	m.checks.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) ObserveValidationDuration(seconds float64) {
	m.duration.Observe(seconds)
}
