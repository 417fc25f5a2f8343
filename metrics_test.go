package rbacmiddleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scaffoldkit/go-rbac-middleware/core"
)

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	metrics, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	metrics.IncCheckOutcome("granted")
	metrics.IncCheckOutcome("granted")
	metrics.IncCheckOutcome(core.CodeTokenExpired)
	metrics.ObserveValidationDuration(0.002)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(metrics.checks.WithLabelValues("granted")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.checks.WithLabelValues(core.CodeTokenExpired)))

	count, err := testutil.GatherAndCount(registry,
		"rbac_credential_checks_total", "rbac_token_validation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPrometheusMetricsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	_, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	_, err = NewPrometheusMetrics(registry)
	assert.ErrorContains(t, err, "could not register collector")
}
