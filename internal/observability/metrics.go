// Package observability provides Prometheus metrics for the extraction
// pipeline and an optional HTTP endpoint exposing them.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains all Prometheus metrics for a pipeline run.
type PipelineMetrics struct {
	ChunksProcessed      *prometheus.CounterVec // partitioned by outcome: active, inactive, failed
	EventsDetected       prometheus.Counter
	SubTrackRejections   *prometheus.CounterVec // partitioned by rejection reason
	GatedDetections      prometheus.Counter
	ChunkProcessDuration prometheus.Histogram
	ActiveWorkers        prometheus.Gauge

	registry *prometheus.Registry
}

// NewPipelineMetrics creates and registers pipeline metrics on the given
// registry. It returns an error if registration fails.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}

	m.ChunksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "camsift_chunks_processed_total",
			Help: "Total number of chunks processed, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	m.EventsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "camsift_events_detected_total",
			Help: "Total number of events that survived every gate.",
		},
	)
	m.SubTrackRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "camsift_subtrack_rejections_total",
			Help: "Total number of sub-tracks rejected, partitioned by the first failing gate.",
		},
		[]string{"reason"},
	)
	m.GatedDetections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "camsift_gated_detections_total",
			Help: "Total number of individual detections dropped by the quality gate.",
		},
	)
	m.ChunkProcessDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "camsift_chunk_process_duration_seconds",
			Help:    "Time spent filtering and segmenting one chunk.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
	m.ActiveWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "camsift_active_workers",
			Help: "Number of chunk workers currently running.",
		},
	)

	collectors := []prometheus.Collector{
		m.ChunksProcessed,
		m.EventsDetected,
		m.SubTrackRejections,
		m.GatedDetections,
		m.ChunkProcessDuration,
		m.ActiveWorkers,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
		}
	}

	return m, nil
}

// Rejection reason label values, matching the segmenter's counters.
const (
	ReasonLength     = "track_length"
	ReasonDuration   = "duration"
	ReasonConfidence = "confidence"
	ReasonMovement   = "movement"
)

// Chunk outcome label values.
const (
	OutcomeActive   = "active"
	OutcomeInactive = "inactive"
	OutcomeFailed   = "failed"
)
