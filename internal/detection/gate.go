// gate.go: per-detection quality gate shared by the activity filter and the
// track segmenter. Both stages hold their own GateConfig instance; the
// predicate itself is the single code path.
package detection

// GateConfig holds the thresholds for one quality gate instance. All bounds
// are inclusive.
type GateConfig struct {
	ConfThreshold  float64 // minimum detection confidence
	MinBBoxArea    float64 // minimum bbox area in pixels
	MaxBBoxArea    float64 // maximum bbox area in pixels
	MinAspectRatio float64 // minimum height/width ratio
	MaxAspectRatio float64 // maximum height/width ratio
}

// Accepts reports whether the detection passes the confidence and geometry
// gates. Malformed input never panics: a degenerate or inverted box
// normalizes to a non-positive area and a zero aspect ratio, which fail the
// geometry bounds.
func (g GateConfig) Accepts(det Detection) bool {
	if det.Confidence < g.ConfThreshold {
		return false
	}

	area := det.BBox.Area()
	if area < g.MinBBoxArea || area > g.MaxBBoxArea {
		return false
	}

	ratio := det.BBox.AspectRatio()
	if ratio < g.MinAspectRatio || ratio > g.MaxAspectRatio {
		return false
	}

	return true
}
