// Package analysis implements the operations behind the CLI commands: the
// activity-only pass, the full detection pipeline and proposal generation.
package analysis

import (
	"context"
	"path/filepath"
	"time"

	"github.com/camsift/camsift/internal/conf"
	"github.com/camsift/camsift/internal/datastore"
	"github.com/camsift/camsift/internal/detection"
	"github.com/camsift/camsift/internal/filter"
	"github.com/camsift/camsift/internal/ingest"
	"github.com/camsift/camsift/internal/labeling"
	"github.com/camsift/camsift/internal/logging"
	"github.com/camsift/camsift/internal/observability"
	"github.com/camsift/camsift/internal/pipeline"
	"github.com/camsift/camsift/internal/summary"

	"github.com/prometheus/client_golang/prometheus"
)

// Filter runs only the chunk-level activity filter and writes the
// active-chunks report. Useful for previewing how much footage the full
// pipeline would have to examine.
func Filter(ctx context.Context, settings *conf.Settings) error {
	logger := logging.ForService("analysis")
	start := time.Now()

	chunks, err := ingest.LoadChunkIndex(settings.Input.ChunkIndex)
	if err != nil {
		return err
	}

	af := filter.New(filter.Config{
		Gate: gateOf(settings.ActivityFilter.Gate),
		MinPersonFrames: settings.ActivityFilter.MinPersonFrames,
	}, logger)

	report := summary.ActivityReport{
		FilterConfig: settings.ActivityFilter,
	}
	report.Statistics.TotalChunks = len(chunks)
	report.Statistics.EventsByDuration = summary.NewDurationHistogram()
	report.Statistics.StartTime = start.UTC().Format(time.RFC3339)

	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := chunks[i]

		dets, err := ingest.LoadChunkDetections(settings.Input.DetectionsDir, chunk.ID)
		if err != nil {
			logger.Error("chunk ingest failed", "chunk_id", chunk.ID, "error", err)
			report.Statistics.FailedChunks++
			continue
		}

		samples := ingest.SampleFrames(chunk, dets, settings.ActivityFilter.SampleRate)
		result := af.FilterChunk(chunk.ID, samples)
		if result.Active {
			report.Statistics.ActiveChunks++
			report.ActiveChunks = append(report.ActiveChunks, summary.ChunkActivity{
				Chunk:    chunk,
				Activity: result,
			})
		} else {
			report.Statistics.InactiveChunks++
		}
	}

	end := time.Now()
	report.Statistics.EndTime = end.UTC().Format(time.RFC3339)
	report.Statistics.ProcessingTimeSeconds = end.Sub(start).Seconds()

	if err := summary.WriteActivityReport(settings.Output.Path, &report); err != nil {
		return err
	}

	logger.Info("activity filtering finished",
		"total_chunks", report.Statistics.TotalChunks,
		"active_chunks", report.Statistics.ActiveChunks,
		"report", filepath.Join(settings.Output.Path, summary.ActivityReportFile))
	return nil
}

// Detect runs the full pipeline over the chunk index and writes the events
// summary. Events are additionally persisted to SQLite when enabled, and a
// Prometheus endpoint is served for the duration of the run when enabled.
func Detect(ctx context.Context, settings *conf.Settings) error {
	logger := logging.ForService("analysis")

	var metrics *observability.PipelineMetrics
	var endpoint *observability.Endpoint
	if settings.Output.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		m, err := observability.NewPipelineMetrics(registry)
		if err != nil {
			return err
		}
		metrics = m
		endpoint = observability.NewEndpoint(settings.Output.Metrics.Listen, registry, logger)
		endpoint.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := endpoint.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics endpoint shutdown failed", "error", err)
			}
		}()
	}

	state, err := pipeline.NewStateManager(settings.Pipeline.StateFile)
	if err != nil {
		return err
	}

	coordinator := pipeline.New(settings, logger, metrics, state)
	result, err := coordinator.Run(ctx)
	if err != nil {
		return err
	}

	sum := summary.EventsSummary{
		Statistics:     result.Stats,
		Events:         result.Events,
		DetectorConfig: settings.EventDetector,
	}
	if err := summary.WriteEventsSummary(settings.Output.Path, &sum); err != nil {
		return err
	}
	activity := summary.ActivityReport{
		Statistics:   result.Stats,
		ActiveChunks: result.Activity,
		FilterConfig: settings.ActivityFilter,
	}
	if err := summary.WriteActivityReport(settings.Output.Path, &activity); err != nil {
		return err
	}

	if settings.Output.SQLite.Enabled {
		store := datastore.NewSQLite(settings.Output.SQLite.Path, logger)
		if err := store.Open(); err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing event database failed", "error", err)
			}
		}()
		if err := store.SaveEvents(result.Events); err != nil {
			return err
		}
	}

	logger.Info("event detection finished",
		"events", result.Stats.TotalEvents,
		"summary", filepath.Join(settings.Output.Path, summary.EventsSummaryFile))
	return nil
}

// Label loads a previously written events summary and generates heuristic
// behavior proposals for human review.
func Label(ctx context.Context, settings *conf.Settings, summaryPath string) error {
	logger := logging.ForService("analysis")

	if summaryPath == "" {
		summaryPath = filepath.Join(settings.Output.Path, summary.EventsSummaryFile)
	}
	sum, err := summary.LoadEventsSummary(summaryPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	labeler := labeling.New(labeling.Config{
		NormalMaxDuration:       settings.Labeler.NormalMaxDuration,
		SuspiciousMinDuration:   settings.Labeler.SuspiciousMinDuration,
		SuspiciousMinFrames:     settings.Labeler.SuspiciousMinFrames,
		HighConfidenceThreshold: settings.Labeler.HighConfidenceThreshold,
	}, logger)

	proposals, stats := labeler.ProposeAll(sum.Events)
	report := summary.ProposalsReport{
		Statistics:    stats,
		Proposals:     proposals,
		LabelerConfig: settings.Labeler,
	}
	if err := summary.WriteProposals(settings.Output.Path, &report); err != nil {
		return err
	}

	logger.Info("proposal generation finished",
		"proposals", len(proposals),
		"needs_review", stats.NeedsReview,
		"report", filepath.Join(settings.Output.Path, summary.ProposalsFile))
	return nil
}

func gateOf(g conf.GateSettings) detection.GateConfig {
	return detection.GateConfig{
		ConfThreshold:  g.ConfThreshold,
		MinBBoxArea:    g.MinBBoxArea,
		MaxBBoxArea:    g.MaxBBoxArea,
		MinAspectRatio: g.MinAspectRatio,
		MaxAspectRatio: g.MaxAspectRatio,
	}
}
