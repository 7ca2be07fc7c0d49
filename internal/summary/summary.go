// Package summary persists pipeline results as JSON reports: the
// active-chunks report, the events summary and the proposal metadata. Each
// report carries the statistics and the effective configuration of the run
// so results stay reproducible.
package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/camsift/camsift/internal/conf"
	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/errors"
	"github.com/camsift/camsift/internal/event"
	"github.com/camsift/camsift/internal/filter"
	"github.com/camsift/camsift/internal/labeling"
)

// Report file names inside the output directory.
const (
	ActivityReportFile = "active_chunks_report.json"
	EventsSummaryFile  = "events_summary.json"
	ProposalsFile      = "proposals_metadata.json"
)

// Duration bucket labels for event statistics.
var durationBuckets = []string{"<1s", "1-5s", "5-15s", "15-30s", ">30s"}

// BucketFor returns the duration bucket label for an event duration.
func BucketFor(durationSeconds float64) string {
	switch {
	case durationSeconds < 1:
		return durationBuckets[0]
	case durationSeconds < 5:
		return durationBuckets[1]
	case durationSeconds < 15:
		return durationBuckets[2]
	case durationSeconds < 30:
		return durationBuckets[3]
	default:
		return durationBuckets[4]
	}
}

// NewDurationHistogram returns a zeroed bucket map covering every label, so
// reports always show all buckets.
func NewDurationHistogram() map[string]int {
	h := make(map[string]int, len(durationBuckets))
	for _, b := range durationBuckets {
		h[b] = 0
	}
	return h
}

// RunStats aggregates one pipeline run.
type RunStats struct {
	TotalChunks           int            `json:"total_chunks"`
	ActiveChunks          int            `json:"active_chunks"`
	InactiveChunks        int            `json:"inactive_chunks"`
	FailedChunks          int            `json:"failed_chunks"`
	TotalEvents           int            `json:"total_events"`
	TotalTracks           int            `json:"total_tracks"`
	EventsByDuration      map[string]int `json:"events_by_duration"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds"`
	StartTime             string         `json:"start_time"`
	EndTime               string         `json:"end_time"`
}

// ChunkActivity pairs a chunk with its activity-filter result.
type ChunkActivity struct {
	Chunk    detection.Chunk `json:"chunk"`
	Activity filter.Result   `json:"activity"`
}

// ActivityReport is the active-chunks report written after filtering.
type ActivityReport struct {
	Statistics   RunStats                    `json:"statistics"`
	ActiveChunks []ChunkActivity             `json:"active_chunks"`
	FilterConfig conf.ActivityFilterSettings `json:"filter_config"`
}

// EventsSummary is the event report handed to proposal generation.
type EventsSummary struct {
	Statistics     RunStats                   `json:"statistics"`
	Events         []event.Event              `json:"events"`
	DetectorConfig conf.EventDetectorSettings `json:"detector_config"`
}

// ProposalsReport is the proposal metadata written for the review tool.
type ProposalsReport struct {
	Statistics    labeling.Stats       `json:"statistics"`
	Proposals     []labeling.Proposal  `json:"proposals"`
	LabelerConfig conf.LabelerSettings `json:"labeler_config"`
}

// WriteActivityReport writes the active-chunks report into dir.
func WriteActivityReport(dir string, report *ActivityReport) error {
	return writeJSON(filepath.Join(dir, ActivityReportFile), report)
}

// LoadActivityReport reads a previously written active-chunks report.
func LoadActivityReport(path string) (*ActivityReport, error) {
	var report ActivityReport
	if err := readJSON(path, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// WriteEventsSummary writes the events summary into dir.
func WriteEventsSummary(dir string, sum *EventsSummary) error {
	return writeJSON(filepath.Join(dir, EventsSummaryFile), sum)
}

// LoadEventsSummary reads a previously written events summary.
func LoadEventsSummary(path string) (*EventsSummary, error) {
	var sum EventsSummary
	if err := readJSON(path, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// WriteProposals writes the proposal metadata into dir.
func WriteProposals(dir string, report *ProposalsReport) error {
	return writeJSON(filepath.Join(dir, ProposalsFile), report)
}

// LoadProposals reads previously written proposal metadata.
func LoadProposals(path string) (*ProposalsReport, error) {
	var report ProposalsReport
	if err := readJSON(path, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(fmt.Errorf("creating report directory: %w", err)).
			Component("summary").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.New(fmt.Errorf("marshaling report: %w", err)).
			Component("summary").
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(fmt.Errorf("writing report: %w", err)).
			Component("summary").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(fmt.Errorf("reading report: %w", err)).
			Component("summary").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.New(fmt.Errorf("parsing report: %w", err)).
			Component("summary").
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}
	return nil
}
