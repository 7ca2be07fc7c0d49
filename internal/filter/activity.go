// Package filter decides whether a chunk contains enough verified activity
// to be worth the expensive tracking stage.
package filter

import (
	"log/slog"

	"github.com/camsift/camsift/internal/detection"
)

// Config holds the activity-filter thresholds. The gate instance is
// configured independently from the event detector's.
type Config struct {
	Gate            detection.GateConfig // per-detection quality gate
	MinPersonFrames int                  // minimum active frames to mark the chunk active
}

// Result is the chunk-level activity decision with diagnostic counts.
type Result struct {
	Active        bool    `json:"active"`
	ActiveFrames  int     `json:"active_frames"`
	SampledFrames int     `json:"sampled_frames"`
	ActivityScore float64 `json:"activity_score"` // active / sampled, 0 when nothing was sampled
}

// ActivityFilter evaluates sampled per-frame detections for one chunk.
type ActivityFilter struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an ActivityFilter. A nil logger disables logging.
func New(cfg Config, logger *slog.Logger) *ActivityFilter {
	return &ActivityFilter{cfg: cfg, logger: logger}
}

// FilterChunk decides whether the chunk is active. A frame counts as active
// if at least one of its detections passes the quality gate; the chunk is
// active when enough frames are. An empty sample set means no activity, not
// an error. Deterministic for identical input.
func (f *ActivityFilter) FilterChunk(chunkID string, samples []detection.FrameSample) Result {
	var res Result
	res.SampledFrames = len(samples)

	for i := range samples {
		if f.frameActive(&samples[i]) {
			res.ActiveFrames++
		}
	}

	if res.SampledFrames > 0 {
		res.ActivityScore = float64(res.ActiveFrames) / float64(res.SampledFrames)
	}
	res.Active = res.ActiveFrames >= f.cfg.MinPersonFrames

	if f.logger != nil {
		f.logger.Debug("chunk activity evaluated",
			"chunk_id", chunkID,
			"active", res.Active,
			"active_frames", res.ActiveFrames,
			"sampled_frames", res.SampledFrames,
			"activity_score", res.ActivityScore)
	}

	return res
}

// frameActive reports whether any detection in the frame passes the gate.
func (f *ActivityFilter) frameActive(sample *detection.FrameSample) bool {
	for _, det := range sample.Detections {
		if f.cfg.Gate.Accepts(det) {
			return true
		}
	}
	return false
}
