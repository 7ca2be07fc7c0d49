package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camsift/camsift/internal/detection"
)

func testConfig(minFrames int) Config {
	return Config{
		Gate: detection.GateConfig{
			ConfThreshold:  0.5,
			MinBBoxArea:    2000,
			MaxBBoxArea:    500000,
			MinAspectRatio: 0.3,
			MaxAspectRatio: 4.0,
		},
		MinPersonFrames: minFrames,
	}
}

// frame builds a sampled frame containing one detection per confidence.
func frame(idx int, confs ...float64) detection.FrameSample {
	s := detection.FrameSample{FrameIndex: idx}
	for _, c := range confs {
		s.Detections = append(s.Detections, detection.Detection{
			FrameIndex: idx,
			TrackID:    1,
			Confidence: c,
			BBox:       detection.BBox{X2: 100, Y2: 100},
		})
	}
	return s
}

func TestFilterChunkActive(t *testing.T) {
	t.Parallel()
	f := New(testConfig(2), nil)

	samples := []detection.FrameSample{
		frame(0, 0.9),
		frame(15, 0.8),
		frame(30, 0.2), // below gate, inactive frame
	}

	res := f.FilterChunk("chunk_0001", samples)
	assert.True(t, res.Active)
	assert.Equal(t, 2, res.ActiveFrames)
	assert.Equal(t, 3, res.SampledFrames)
	assert.InDelta(t, 2.0/3.0, res.ActivityScore, 1e-9)
}

func TestFilterChunkBelowMinPersonFrames(t *testing.T) {
	t.Parallel()
	f := New(testConfig(3), nil)

	samples := []detection.FrameSample{
		frame(0, 0.9),
		frame(15, 0.8),
		frame(30), // no detections at all
	}

	res := f.FilterChunk("chunk_0002", samples)
	assert.False(t, res.Active)
	assert.Equal(t, 2, res.ActiveFrames)
}

func TestFilterChunkExactlyMinPersonFrames(t *testing.T) {
	t.Parallel()
	f := New(testConfig(2), nil)

	res := f.FilterChunk("chunk_0003", []detection.FrameSample{
		frame(0, 0.9),
		frame(15, 0.9),
	})
	assert.True(t, res.Active, "active-frame count equal to the minimum is accepted")
}

func TestFilterChunkEmptyStream(t *testing.T) {
	t.Parallel()
	f := New(testConfig(1), nil)

	// Missing or empty detection streams mean no activity, not an error.
	res := f.FilterChunk("chunk_0004", nil)
	assert.False(t, res.Active)
	assert.Zero(t, res.ActiveFrames)
	assert.Zero(t, res.SampledFrames)
	assert.Zero(t, res.ActivityScore)
}

func TestFilterChunkOneValidDetectionSuffices(t *testing.T) {
	t.Parallel()
	f := New(testConfig(1), nil)

	// A frame full of garbage detections plus one valid detection counts
	// as active.
	s := frame(0, 0.1, 0.2, 0.3)
	s.Detections = append(s.Detections, detection.Detection{
		FrameIndex: 0,
		Confidence: 0.95,
		BBox:       detection.BBox{X2: 80, Y2: 120},
	})

	res := f.FilterChunk("chunk_0005", []detection.FrameSample{s})
	assert.True(t, res.Active)
	assert.Equal(t, 1, res.ActiveFrames)
}

func TestFilterChunkZeroMinPersonFramesAlwaysActive(t *testing.T) {
	t.Parallel()
	f := New(testConfig(0), nil)

	res := f.FilterChunk("chunk_0006", nil)
	assert.True(t, res.Active, "a zero minimum marks even empty chunks active")
}
