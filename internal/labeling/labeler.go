// Package labeling generates annotation proposals for detected events.
// Simple duration/motion/confidence heuristics assign an initial behavior
// class so human reviewers start from a suggestion instead of a blank page.
package labeling

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/event"
)

// BehaviorClass is a heuristic behavior category for a detected event.
type BehaviorClass int

const (
	BehaviorNormal BehaviorClass = iota
	BehaviorDiscreetTheft
	BehaviorBagTheft
	BehaviorGroupTheft
	BehaviorAmbiguous
	BehaviorStaffRestocking
)

// String returns the class name used in reports and exports.
func (c BehaviorClass) String() string {
	switch c {
	case BehaviorNormal:
		return "normal_behavior"
	case BehaviorDiscreetTheft:
		return "discreet_theft"
	case BehaviorBagTheft:
		return "bag_backpack_theft"
	case BehaviorGroupTheft:
		return "collaborative_group_theft"
	case BehaviorAmbiguous:
		return "ambiguous_suspicious"
	case BehaviorStaffRestocking:
		return "staff_restocking"
	default:
		return "unknown"
	}
}

// staticMovementPixels is the center movement below which a person is
// considered to be standing still.
const staticMovementPixels = 50.0

// lowConfidenceCutoff flags events whose detections averaged too low to
// trust the heuristic classification.
const lowConfidenceCutoff = 0.5

// Config holds the labeling thresholds.
type Config struct {
	NormalMaxDuration       float64 // below this duration an event is a quick pass-through
	SuspiciousMinDuration   float64 // above this duration an event suggests loitering
	SuspiciousMinFrames     int     // minimum frames for the prolonged-stay heuristic
	HighConfidenceThreshold float64 // proposals below this always need review
}

// Proposal is one annotation suggestion for an event, ready for a human
// review tool.
type Proposal struct {
	EventID                  string           `json:"event_id"`
	TrackID                  int              `json:"track_id"`
	ChunkID                  string           `json:"chunk_id"`
	SuggestedClass           string           `json:"suggested_class"`
	CategoryID               int              `json:"category_id"`
	ClassificationConfidence float64          `json:"classification_confidence"`
	NeedsReview              bool             `json:"needs_review"`
	Reasoning                string           `json:"reasoning"`
	StartFrame               int              `json:"start_frame"`
	EndFrame                 int              `json:"end_frame"`
	DurationSeconds          float64          `json:"duration_seconds"`
	DetectionCount           int              `json:"detection_count"`
	MovementDistance         float64          `json:"movement_distance"`
	MeanConfidence           float64          `json:"mean_confidence"`
	RepresentativeBBoxes     []detection.BBox `json:"representative_bboxes"`
	Timestamp                string           `json:"timestamp"`
}

// Stats aggregates a labeling run.
type Stats struct {
	TotalEvents      int            `json:"total_events"`
	ProposalsByClass map[string]int `json:"proposals_by_class"`
	HighConfidence   int            `json:"high_confidence"`   // > 0.7
	MediumConfidence int            `json:"medium_confidence"` // 0.4 - 0.7
	LowConfidence    int            `json:"low_confidence"`    // < 0.4
	NeedsReview      int            `json:"needs_review"`
}

// Labeler generates proposals from events.
type Labeler struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Labeler. A nil logger disables logging.
func New(cfg Config, logger *slog.Logger) *Labeler {
	return &Labeler{cfg: cfg, logger: logger, now: time.Now}
}

// Propose generates one annotation proposal for an event.
func (l *Labeler) Propose(ev *event.Event) Proposal {
	class, reasoning, confidence := l.classify(ev)

	needsReview := confidence < l.cfg.HighConfidenceThreshold || class == BehaviorAmbiguous

	return Proposal{
		EventID:                  ev.EventID,
		TrackID:                  ev.TrackID,
		ChunkID:                  ev.ChunkID,
		SuggestedClass:           class.String(),
		CategoryID:               int(class),
		ClassificationConfidence: confidence,
		NeedsReview:              needsReview,
		Reasoning:                reasoning,
		StartFrame:               ev.StartFrame,
		EndFrame:                 ev.EndFrame,
		DurationSeconds:          ev.DurationSeconds,
		DetectionCount:           ev.DetectionCount,
		MovementDistance:         ev.Movement,
		MeanConfidence:           ev.MeanConfidence,
		RepresentativeBBoxes:     ev.RepresentativeBBoxes,
		Timestamp:                l.now().Format(time.RFC3339),
	}
}

// ProposeAll generates proposals for a batch of events and aggregates run
// statistics.
func (l *Labeler) ProposeAll(events []event.Event) ([]Proposal, Stats) {
	stats := Stats{
		TotalEvents:      len(events),
		ProposalsByClass: make(map[string]int),
	}

	proposals := make([]Proposal, 0, len(events))
	for i := range events {
		p := l.Propose(&events[i])
		proposals = append(proposals, p)

		stats.ProposalsByClass[p.SuggestedClass]++
		switch {
		case p.ClassificationConfidence > 0.7:
			stats.HighConfidence++
		case p.ClassificationConfidence > 0.4:
			stats.MediumConfidence++
		default:
			stats.LowConfidence++
		}
		if p.NeedsReview {
			stats.NeedsReview++
		}
	}

	if l.logger != nil {
		l.logger.Info("labeling complete",
			"events", stats.TotalEvents,
			"needs_review", stats.NeedsReview,
			"high_confidence", stats.HighConfidence)
	}

	return proposals, stats
}

// classify applies the behavior heuristics in priority order and returns
// the class, a human-readable reasoning string, and the classification
// confidence.
func (l *Labeler) classify(ev *event.Event) (BehaviorClass, string, float64) {
	duration := ev.DurationSeconds
	frames := ev.DetectionCount
	movement := ev.Movement

	// Very short events are quick pass-throughs.
	if duration < l.cfg.NormalMaxDuration {
		return BehaviorNormal,
			fmt.Sprintf("short duration (%.1fs < %.1fs) indicates quick pass-through", duration, l.cfg.NormalMaxDuration),
			0.7
	}

	// Long presence with many detections suggests loitering.
	if duration > l.cfg.SuspiciousMinDuration && frames > l.cfg.SuspiciousMinFrames {
		return BehaviorAmbiguous,
			fmt.Sprintf("long duration (%.1fs) over %d frames indicates prolonged stay", duration, frames),
			0.5
	}

	// A person nearly standing still for the whole event.
	if movement < staticMovementPixels {
		return BehaviorAmbiguous,
			fmt.Sprintf("low movement (%.1fpx) indicates person standing still for %.1fs", movement, duration),
			0.4
	}

	// Weak detections cannot support any confident suggestion.
	if ev.MeanConfidence < lowConfidenceCutoff {
		return BehaviorAmbiguous,
			fmt.Sprintf("low detection confidence (%.2f) requires review", ev.MeanConfidence),
			0.3
	}

	return BehaviorNormal,
		fmt.Sprintf("default: %.1fs, %d frames, %.1fpx movement", duration, frames, movement),
		0.6
}
