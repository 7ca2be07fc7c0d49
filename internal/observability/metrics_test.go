package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineMetricsRegisters(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.ChunksProcessed.WithLabelValues(OutcomeActive).Inc()
	m.ChunksProcessed.WithLabelValues(OutcomeInactive).Add(2)
	m.EventsDetected.Add(5)
	m.SubTrackRejections.WithLabelValues(ReasonDuration).Inc()
	m.GatedDetections.Add(7)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ChunksProcessed.WithLabelValues(OutcomeActive)), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ChunksProcessed.WithLabelValues(OutcomeInactive)), 1e-9)
	assert.InDelta(t, 5.0, testutil.ToFloat64(m.EventsDetected), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.SubTrackRejections.WithLabelValues(ReasonDuration)), 1e-9)
	assert.InDelta(t, 7.0, testutil.ToFloat64(m.GatedDetections), 1e-9)
}

func TestNewPipelineMetricsDoubleRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	_, err = NewPipelineMetrics(registry)
	assert.Error(t, err, "registering the same metrics twice must fail")
}
