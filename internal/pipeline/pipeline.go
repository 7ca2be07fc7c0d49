// Package pipeline coordinates the chunk processing stages: ingest, activity
// filtering, track segmentation and event assembly. Chunks are processed by a
// bounded worker pool; each chunk is independent, so one failing chunk never
// aborts its siblings.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/camsift/camsift/internal/conf"
	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/errors"
	"github.com/camsift/camsift/internal/event"
	"github.com/camsift/camsift/internal/filter"
	"github.com/camsift/camsift/internal/ingest"
	"github.com/camsift/camsift/internal/logging"
	"github.com/camsift/camsift/internal/observability"
	"github.com/camsift/camsift/internal/segment"
	"github.com/camsift/camsift/internal/summary"
)

// ChunkResult is the outcome of processing a single chunk.
type ChunkResult struct {
	Chunk     detection.Chunk
	Activity  filter.Result
	Events    []event.Event
	Stats     segment.Stats
	Processed bool // worker reached this chunk before cancellation
	Skipped   bool // chunk completed in a previous run
	Err       error
}

// Result is the merged outcome of a pipeline run.
type Result struct {
	Stats    summary.RunStats
	Activity []summary.ChunkActivity // active chunks, in index order
	Events   []event.Event           // all events, in index order
	Segment  segment.Stats           // aggregated segmentation statistics
	Skipped  int                     // chunks skipped via resume state
}

// Coordinator drives the per-chunk stages over the chunk index.
type Coordinator struct {
	settings  *conf.Settings
	logger    *slog.Logger
	metrics   *observability.PipelineMetrics
	state     *StateManager
	filter    *filter.ActivityFilter
	segmenter *segment.Segmenter
	assembler *event.Assembler
}

// New creates a Coordinator from settings. Metrics and state may be nil; the
// coordinator then runs without instrumentation or resume support.
func New(settings *conf.Settings, logger *slog.Logger, metrics *observability.PipelineMetrics, state *StateManager) *Coordinator {
	if logger == nil {
		logger = logging.ForService("pipeline")
	}

	gateOf := func(g conf.GateSettings) detection.GateConfig {
		return detection.GateConfig{
			ConfThreshold:  g.ConfThreshold,
			MinBBoxArea:    g.MinBBoxArea,
			MaxBBoxArea:    g.MaxBBoxArea,
			MinAspectRatio: g.MinAspectRatio,
			MaxAspectRatio: g.MaxAspectRatio,
		}
	}

	return &Coordinator{
		settings: settings,
		logger:   logger,
		metrics:  metrics,
		state:    state,
		filter: filter.New(filter.Config{
			Gate:            gateOf(settings.ActivityFilter.Gate),
			MinPersonFrames: settings.ActivityFilter.MinPersonFrames,
		}, logger),
		segmenter: segment.New(segment.Config{
			Gate:                    gateOf(settings.EventDetector.Gate),
			MinTrackLength:          settings.EventDetector.MinTrackLength,
			MinEventDurationSeconds: settings.EventDetector.MinEventDurationSeconds,
			MaxGapFrames:            settings.EventDetector.MaxGapFrames,
			MinTrackConfidenceAvg:   settings.EventDetector.MinTrackConfidenceAvg,
			RequireMotion:           settings.EventDetector.RequireMotion,
			MinTrackMovementPixels:  settings.EventDetector.MinTrackMovementPixels,
		}, logger),
		assembler: event.NewAssembler(),
	}
}

// Run loads the chunk index and processes every chunk through the filter,
// segmentation and assembly stages. Per-chunk results are merged in index
// order after all workers finish, so output is deterministic regardless of
// worker scheduling.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	chunks, err := ingest.LoadChunkIndex(c.settings.Input.ChunkIndex)
	if err != nil {
		return nil, err
	}
	return c.RunChunks(ctx, chunks)
}

// RunChunks processes the given chunks with a bounded worker pool.
func (c *Coordinator) RunChunks(ctx context.Context, chunks []detection.Chunk) (*Result, error) {
	start := time.Now()

	workers := c.settings.Pipeline.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(chunks) && len(chunks) > 0 {
		workers = len(chunks)
	}

	c.logger.Info("pipeline run starting",
		"chunks", len(chunks),
		"workers", workers)

	results := make([]ChunkResult, len(chunks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.processChunk(ctx, chunks[idx])
			}
		}()
	}

dispatch:
	for i := range chunks {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	res := c.merge(chunks, results, start)

	if err := ctx.Err(); err != nil {
		return res, errors.New(fmt.Errorf("pipeline run interrupted: %w", err)).
			Component("pipeline").
			Category(errors.CategoryCancellation).
			Context("completed_chunks", res.Stats.ActiveChunks+res.Stats.InactiveChunks).
			Build()
	}

	c.logger.Info("pipeline run finished",
		"active_chunks", res.Stats.ActiveChunks,
		"inactive_chunks", res.Stats.InactiveChunks,
		"failed_chunks", res.Stats.FailedChunks,
		"events", res.Stats.TotalEvents,
		"duration", time.Since(start))
	return res, nil
}

// processChunk runs one chunk through every stage. Errors are captured in the
// result instead of propagating, so a broken chunk degrades to zero events.
func (c *Coordinator) processChunk(ctx context.Context, chunk detection.Chunk) ChunkResult {
	res := ChunkResult{Chunk: chunk}

	if err := ctx.Err(); err != nil {
		return res
	}
	res.Processed = true

	if c.state != nil && c.state.IsCompleted(chunk.ID, StageEvents) {
		c.logger.Debug("skipping completed chunk", "chunk_id", chunk.ID)
		res.Skipped = true
		return res
	}

	if c.metrics != nil {
		c.metrics.ActiveWorkers.Inc()
		defer c.metrics.ActiveWorkers.Dec()
		timer := time.Now()
		defer func() {
			c.metrics.ChunkProcessDuration.Observe(time.Since(timer).Seconds())
		}()
	}

	dets, err := ingest.LoadChunkDetections(c.settings.Input.DetectionsDir, chunk.ID)
	if err != nil {
		c.logger.Error("chunk ingest failed", "chunk_id", chunk.ID, "error", err)
		c.countOutcome(observability.OutcomeFailed)
		res.Err = err
		return res
	}

	samples := ingest.SampleFrames(chunk, dets, c.settings.ActivityFilter.SampleRate)
	res.Activity = c.filter.FilterChunk(chunk.ID, samples)
	c.markCompleted(chunk.ID, StageActivity)

	if !res.Activity.Active {
		c.countOutcome(observability.OutcomeInactive)
		c.markCompleted(chunk.ID, StageEvents)
		return res
	}

	subs, stats := c.segmenter.Segment(chunk, dets)
	res.Stats = stats
	res.Events = c.assembler.AssembleAll(chunk, subs)

	c.countOutcome(observability.OutcomeActive)
	c.recordSegmentMetrics(&stats, len(res.Events))
	c.markCompleted(chunk.ID, StageEvents)
	return res
}

// merge folds per-chunk results into one Result in chunk index order.
func (c *Coordinator) merge(chunks []detection.Chunk, results []ChunkResult, start time.Time) *Result {
	res := &Result{
		Stats: summary.RunStats{
			TotalChunks:      len(chunks),
			EventsByDuration: summary.NewDurationHistogram(),
			StartTime:        start.UTC().Format(time.RFC3339),
		},
	}

	for i := range results {
		cr := &results[i]
		switch {
		case !cr.Processed && !cr.Skipped:
			continue
		case cr.Skipped:
			res.Skipped++
			continue
		case cr.Err != nil:
			res.Stats.FailedChunks++
			continue
		case !cr.Activity.Active:
			res.Stats.InactiveChunks++
			continue
		}

		res.Stats.ActiveChunks++
		res.Activity = append(res.Activity, summary.ChunkActivity{
			Chunk:    cr.Chunk,
			Activity: cr.Activity,
		})
		res.Events = append(res.Events, cr.Events...)

		res.Segment.TotalTracks += cr.Stats.TotalTracks
		res.Segment.TotalSubTracks += cr.Stats.TotalSubTracks
		res.Segment.GatedDetections += cr.Stats.GatedDetections
		res.Segment.RejectedLength += cr.Stats.RejectedLength
		res.Segment.RejectedDuration += cr.Stats.RejectedDuration
		res.Segment.RejectedConfidence += cr.Stats.RejectedConfidence
		res.Segment.RejectedMovement += cr.Stats.RejectedMovement
		res.Segment.Accepted += cr.Stats.Accepted
	}

	for i := range res.Events {
		res.Stats.EventsByDuration[summary.BucketFor(res.Events[i].DurationSeconds)]++
	}
	res.Stats.TotalEvents = len(res.Events)
	res.Stats.TotalTracks = res.Segment.TotalTracks

	end := time.Now()
	res.Stats.EndTime = end.UTC().Format(time.RFC3339)
	res.Stats.ProcessingTimeSeconds = end.Sub(start).Seconds()
	return res
}

func (c *Coordinator) markCompleted(chunkID, stage string) {
	if c.state == nil {
		return
	}
	if err := c.state.MarkCompleted(chunkID, stage); err != nil {
		c.logger.Warn("failed to persist pipeline state",
			"chunk_id", chunkID,
			"stage", stage,
			"error", err)
	}
}

func (c *Coordinator) countOutcome(outcome string) {
	if c.metrics != nil {
		c.metrics.ChunksProcessed.WithLabelValues(outcome).Inc()
	}
}

func (c *Coordinator) recordSegmentMetrics(stats *segment.Stats, eventCount int) {
	if c.metrics == nil {
		return
	}
	c.metrics.EventsDetected.Add(float64(eventCount))
	c.metrics.GatedDetections.Add(float64(stats.GatedDetections))
	c.metrics.SubTrackRejections.WithLabelValues(observability.ReasonLength).Add(float64(stats.RejectedLength))
	c.metrics.SubTrackRejections.WithLabelValues(observability.ReasonDuration).Add(float64(stats.RejectedDuration))
	c.metrics.SubTrackRejections.WithLabelValues(observability.ReasonConfidence).Add(float64(stats.RejectedConfidence))
	c.metrics.SubTrackRejections.WithLabelValues(observability.ReasonMovement).Add(float64(stats.RejectedMovement))
}

// SortEventsByChunk orders events by chunk ID, then track ID, then start
// frame. Used when events from several runs are combined.
func SortEventsByChunk(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].ChunkID != events[j].ChunkID {
			return events[i].ChunkID < events[j].ChunkID
		}
		if events[i].TrackID != events[j].TrackID {
			return events[i].TrackID < events[j].TrackID
		}
		return events[i].StartFrame < events[j].StartFrame
	})
}
