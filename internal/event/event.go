// Package event converts gated sub-tracks into immutable Event records, the
// unit handed to human review. All filtering decisions happen upstream in
// the segmenter; this package only aggregates.
package event

import (
	"github.com/google/uuid"

	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/segment"
)

// Event is one validated appearance of a tracked object within a chunk.
// Aggregate statistics cover the surviving detections only; detections
// rejected by the quality gate never influence event output.
type Event struct {
	EventID         string  `json:"event_id"`
	ChunkID         string  `json:"chunk_id"`
	TrackID         int     `json:"track_id"`
	StartFrame      int     `json:"start_frame"`
	EndFrame        int     `json:"end_frame"`
	StartTime       float64 `json:"start_time"` // seconds from chunk start
	EndTime         float64 `json:"end_time"`
	DurationSeconds float64 `json:"duration_seconds"`
	DetectionCount  int     `json:"detection_count"`
	MeanConfidence  float64 `json:"mean_confidence"`
	MinConfidence   float64 `json:"min_confidence"`
	MaxConfidence   float64 `json:"max_confidence"`
	Movement        float64 `json:"movement_distance"`

	// First, middle and last surviving detection boxes, used by the
	// downstream labeling stage.
	RepresentativeBBoxes []detection.BBox `json:"representative_bboxes"`
}

// Assembler builds Events from sub-tracks. Event IDs are process-unique.
type Assembler struct{}

// NewAssembler creates an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble converts one surviving sub-track into an Event. The sub-track is
// guaranteed non-empty by the segmenter's length gate.
func (a *Assembler) Assemble(chunk detection.Chunk, sub segment.SubTrack) Event {
	dets := sub.Detections
	first := dets[0]
	last := dets[len(dets)-1]

	minConf, maxConf := first.Confidence, first.Confidence
	for _, det := range dets[1:] {
		if det.Confidence < minConf {
			minConf = det.Confidence
		}
		if det.Confidence > maxConf {
			maxConf = det.Confidence
		}
	}

	var startTime, endTime float64
	if chunk.FPS > 0 {
		startTime = float64(first.FrameIndex) / chunk.FPS
		endTime = float64(last.FrameIndex) / chunk.FPS
	}

	return Event{
		EventID:         uuid.New().String(),
		ChunkID:         chunk.ID,
		TrackID:         sub.TrackID,
		StartFrame:      first.FrameIndex,
		EndFrame:        last.FrameIndex,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationSeconds: sub.DurationSeconds,
		DetectionCount:  len(dets),
		MeanConfidence:  sub.MeanConfidence,
		MinConfidence:   minConf,
		MaxConfidence:   maxConf,
		Movement:        sub.Movement,
		RepresentativeBBoxes: []detection.BBox{
			first.BBox,
			dets[len(dets)/2].BBox,
			last.BBox,
		},
	}
}

// AssembleAll converts every sub-track of one chunk.
func (a *Assembler) AssembleAll(chunk detection.Chunk, subs []segment.SubTrack) []Event {
	if len(subs) == 0 {
		return nil
	}
	events := make([]Event, 0, len(subs))
	for _, sub := range subs {
		events = append(events, a.Assemble(chunk, sub))
	}
	return events
}
