package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testGate returns a gate with the defaults used throughout the pipeline.
func testGate() GateConfig {
	return GateConfig{
		ConfThreshold:  0.5,
		MinBBoxArea:    2000,
		MaxBBoxArea:    500000,
		MinAspectRatio: 0.3,
		MaxAspectRatio: 4.0,
	}
}

// det builds a detection with a box of the given width/height anchored at
// the origin.
func det(conf, w, h float64) Detection {
	return Detection{
		TrackID:    1,
		Confidence: conf,
		BBox:       BBox{X1: 0, Y1: 0, X2: w, Y2: h},
	}
}

func TestGateAcceptsNominalDetection(t *testing.T) {
	t.Parallel()
	g := testGate()

	// 100x100 box: area 10000, aspect ratio 1.0
	assert.True(t, g.Accepts(det(0.9, 100, 100)))
}

func TestGateBoundaryInclusivity(t *testing.T) {
	t.Parallel()
	g := testGate()

	tests := []struct {
		name string
		d    Detection
		want bool
	}{
		{"confidence exactly at threshold", det(0.5, 100, 100), true},
		{"confidence just below threshold", det(0.4999, 100, 100), false},
		// 50x40 box: area exactly 2000
		{"area exactly at minimum", det(0.9, 50, 40), true},
		{"area just below minimum", det(0.9, 50, 39.9), false},
		// 1000x500 box: area exactly 500000
		{"area exactly at maximum", det(0.9, 1000, 500), true},
		{"area just above maximum", det(0.9, 1000, 500.5), false},
		// 100x30 box: aspect ratio exactly 0.3
		{"aspect ratio exactly at minimum", det(0.9, 100, 30), true},
		{"aspect ratio just below minimum", det(0.9, 100, 29), false},
		// 100x400 box: aspect ratio exactly 4.0
		{"aspect ratio exactly at maximum", det(0.9, 100, 400), true},
		{"aspect ratio just above maximum", det(0.9, 100, 410), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, g.Accepts(tt.d))
		})
	}
}

func TestGateRejectsDegenerateGeometry(t *testing.T) {
	t.Parallel()
	g := testGate()

	// Zero width is always rejected regardless of confidence or height.
	assert.False(t, g.Accepts(det(1.0, 0, 100)))
	// Zero height fails the area gate.
	assert.False(t, g.Accepts(det(1.0, 100, 0)))
	// Inverted box (x2 < x1) normalizes to negative width and is rejected.
	inverted := Detection{
		Confidence: 1.0,
		BBox:       BBox{X1: 100, Y1: 0, X2: 0, Y2: 100},
	}
	assert.False(t, g.Accepts(inverted))
}

func TestGateConfidenceMonotonicity(t *testing.T) {
	t.Parallel()

	// Raising the confidence threshold must never accept a detection the
	// lower threshold rejected.
	detections := []Detection{
		det(0.1, 100, 100),
		det(0.3, 100, 100),
		det(0.5, 100, 100),
		det(0.7, 100, 100),
		det(0.9, 100, 100),
	}

	thresholds := []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}
	prevAccepted := make(map[int]bool)
	for i, th := range thresholds {
		g := testGate()
		g.ConfThreshold = th

		accepted := make(map[int]bool)
		for j, d := range detections {
			if g.Accepts(d) {
				accepted[j] = true
			}
		}

		if i > 0 {
			for j := range accepted {
				assert.True(t, prevAccepted[j],
					"detection %d accepted at threshold %.1f but not at a lower threshold", j, th)
			}
		}
		prevAccepted = accepted
	}
}

func TestBBoxHelpers(t *testing.T) {
	t.Parallel()

	b := BBox{X1: 10, Y1: 20, X2: 110, Y2: 220}
	assert.InDelta(t, 100.0, b.Width(), 1e-9)
	assert.InDelta(t, 200.0, b.Height(), 1e-9)
	assert.InDelta(t, 20000.0, b.Area(), 1e-9)
	assert.InDelta(t, 2.0, b.AspectRatio(), 1e-9)

	cx, cy := b.Center()
	assert.InDelta(t, 60.0, cx, 1e-9)
	assert.InDelta(t, 120.0, cy, 1e-9)

	other := BBox{X1: 40, Y1: 60, X2: 140, Y2: 260}
	// Centers are (60,120) and (90,160): distance 50.
	assert.InDelta(t, 50.0, b.CenterDistance(other), 1e-9)
}

func TestAspectRatioZeroWidth(t *testing.T) {
	t.Parallel()

	assert.Zero(t, BBox{X1: 5, X2: 5, Y1: 0, Y2: 10}.AspectRatio())
	assert.Zero(t, BBox{X1: 5, X2: 3, Y1: 0, Y2: 10}.AspectRatio())
}
