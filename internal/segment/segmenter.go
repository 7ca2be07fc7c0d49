// Package segment implements the core filtering algorithm: grouping tracked
// detections into temporally contiguous sub-tracks and rejecting those that
// do not constitute a genuine event.
package segment

import (
	"log/slog"
	"math"
	"sort"

	"github.com/camsift/camsift/internal/detection"
)

// Config holds the event-detector thresholds applied during segmentation.
type Config struct {
	Gate                    detection.GateConfig // per-detection quality gate
	MinTrackLength          int                  // minimum surviving detections per sub-track
	MinEventDurationSeconds float64              // minimum sub-track duration
	MaxGapFrames            int                  // split on larger frame gaps; 0 derives one second from fps
	MinTrackConfidenceAvg   float64              // minimum mean confidence over survivors
	RequireMotion           bool                 // reject near-static sub-tracks when true
	MinTrackMovementPixels  float64              // minimum first-to-last center movement
}

// SubTrack is a temporally contiguous portion of one track that survived
// every gate: its detections passed the quality gate and the aggregate
// length, duration, confidence and motion criteria held. Detections are
// frame-ordered.
type SubTrack struct {
	TrackID         int
	Detections      []detection.Detection
	DurationSeconds float64
	MeanConfidence  float64
	Movement        float64
}

// Stats counts segmentation outcomes per chunk for diagnostics. Rejections
// are counted by the first gate that failed.
type Stats struct {
	TotalTracks        int `json:"total_tracks"`
	TotalSubTracks     int `json:"total_sub_tracks"`
	GatedDetections    int `json:"gated_detections"` // detections dropped by the quality gate
	RejectedLength     int `json:"rejected_track_length"`
	RejectedDuration   int `json:"rejected_duration"`
	RejectedConfidence int `json:"rejected_confidence"`
	RejectedMovement   int `json:"rejected_movement"`
	Accepted           int `json:"accepted"`
}

// Segmenter turns a chunk's tracked detections into gated sub-tracks.
type Segmenter struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Segmenter. A nil logger disables logging.
func New(cfg Config, logger *slog.Logger) *Segmenter {
	return &Segmenter{cfg: cfg, logger: logger}
}

// Segment partitions the detections by track, splits each track into
// contiguous sub-tracks at frame gaps exceeding the configured maximum,
// drops individual detections failing the quality gate, and rejects
// sub-tracks below the length, duration, confidence or motion minimums.
// Input order does not matter and re-running on identical input yields
// identical output. An empty input yields zero sub-tracks, not an error.
func (s *Segmenter) Segment(chunk detection.Chunk, dets []detection.Detection) ([]SubTrack, Stats) {
	var stats Stats

	tracks := partitionByTrack(dets)
	stats.TotalTracks = len(tracks)

	// Sorted track IDs keep the output deterministic.
	trackIDs := make([]int, 0, len(tracks))
	for id := range tracks {
		trackIDs = append(trackIDs, id)
	}
	sort.Ints(trackIDs)

	maxGap := s.maxGapFrames(chunk.FPS)

	var accepted []SubTrack
	for _, id := range trackIDs {
		seq := tracks[id]
		sort.SliceStable(seq, func(i, j int) bool {
			return seq[i].FrameIndex < seq[j].FrameIndex
		})

		for _, run := range splitOnGaps(seq, maxGap) {
			stats.TotalSubTracks++

			sub, ok := s.evaluate(chunk, id, run, &stats)
			if !ok {
				continue
			}
			stats.Accepted++
			accepted = append(accepted, sub)
		}
	}

	if s.logger != nil {
		s.logger.Debug("chunk segmented",
			"chunk_id", chunk.ID,
			"tracks", stats.TotalTracks,
			"sub_tracks", stats.TotalSubTracks,
			"rejected_length", stats.RejectedLength,
			"rejected_duration", stats.RejectedDuration,
			"rejected_confidence", stats.RejectedConfidence,
			"rejected_movement", stats.RejectedMovement,
			"accepted", stats.Accepted)
	}

	return accepted, stats
}

// maxGapFrames resolves the configured gap limit, defaulting to one second
// of frames at the chunk's rate.
func (s *Segmenter) maxGapFrames(fps float64) int {
	if s.cfg.MaxGapFrames > 0 {
		return s.cfg.MaxGapFrames
	}
	gap := int(math.Round(fps))
	if gap < 1 {
		gap = 1
	}
	return gap
}

// evaluate applies the quality gate and the sub-track acceptance criteria
// to one contiguous run. Rejection counters record the first failing gate.
func (s *Segmenter) evaluate(chunk detection.Chunk, trackID int, run []detection.Detection, stats *Stats) (SubTrack, bool) {
	survivors := make([]detection.Detection, 0, len(run))
	for _, det := range run {
		if s.cfg.Gate.Accepts(det) {
			survivors = append(survivors, det)
		} else {
			stats.GatedDetections++
		}
	}

	if len(survivors) < s.cfg.MinTrackLength {
		stats.RejectedLength++
		return SubTrack{}, false
	}

	// Span of the surviving detections, not the pre-filter run.
	startFrame := survivors[0].FrameIndex
	endFrame := survivors[len(survivors)-1].FrameIndex
	var duration float64
	if chunk.FPS > 0 {
		duration = float64(endFrame-startFrame) / chunk.FPS
	}
	if duration < s.cfg.MinEventDurationSeconds {
		stats.RejectedDuration++
		return SubTrack{}, false
	}

	var confSum float64
	for _, det := range survivors {
		confSum += det.Confidence
	}
	meanConf := confSum / float64(len(survivors))
	if meanConf < s.cfg.MinTrackConfidenceAvg {
		stats.RejectedConfidence++
		return SubTrack{}, false
	}

	movement := survivors[0].BBox.CenterDistance(survivors[len(survivors)-1].BBox)
	if s.cfg.RequireMotion && movement < s.cfg.MinTrackMovementPixels {
		stats.RejectedMovement++
		return SubTrack{}, false
	}

	return SubTrack{
		TrackID:         trackID,
		Detections:      survivors,
		DurationSeconds: duration,
		MeanConfidence:  meanConf,
		Movement:        movement,
	}, true
}

// partitionByTrack groups detections by track identifier.
func partitionByTrack(dets []detection.Detection) map[int][]detection.Detection {
	tracks := make(map[int][]detection.Detection)
	for _, det := range dets {
		tracks[det.TrackID] = append(tracks[det.TrackID], det)
	}
	return tracks
}

// splitOnGaps cuts a frame-ordered sequence into maximal runs whose
// inter-detection frame gap never exceeds maxGap. Trackers can silently
// merge two separate appearances under one identity after a long occlusion;
// splitting keeps such appearances from conflating into one event.
func splitOnGaps(seq []detection.Detection, maxGap int) [][]detection.Detection {
	if len(seq) == 0 {
		return nil
	}

	var runs [][]detection.Detection
	start := 0
	for i := 1; i < len(seq); i++ {
		if seq[i].FrameIndex-seq[i-1].FrameIndex > maxGap {
			runs = append(runs, seq[start:i])
			start = i
		}
	}
	return append(runs, seq[start:])
}
