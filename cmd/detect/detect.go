// Package detect implements the event-detection subcommand.
package detect

import (
	"github.com/spf13/cobra"

	"github.com/camsift/camsift/internal/analysis"
	"github.com/camsift/camsift/internal/conf"
)

// Command creates the detect command, which runs the full pipeline: activity
// filtering, track segmentation and event assembly.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Extract events from detector output",
		Long:  "Run the full pipeline over the chunk index and write the events summary. Active chunks are segmented into per-track events that pass the quality gates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Detect(cmd.Context(), settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().IntVar(&settings.EventDetector.MinTrackLength, "min-track-length", settings.EventDetector.MinTrackLength, "Minimum surviving detections per sub-track")
	cmd.Flags().Float64Var(&settings.EventDetector.MinEventDurationSeconds, "min-duration", settings.EventDetector.MinEventDurationSeconds, "Minimum event duration in seconds")
	cmd.Flags().IntVar(&settings.EventDetector.MaxGapFrames, "max-gap", settings.EventDetector.MaxGapFrames, "Split tracks on larger frame gaps, 0 derives one second from fps")
	cmd.Flags().BoolVar(&settings.EventDetector.RequireMotion, "require-motion", settings.EventDetector.RequireMotion, "Reject near-static tracks")
	cmd.Flags().StringVar(&settings.Pipeline.StateFile, "state-file", settings.Pipeline.StateFile, "Pipeline state file for resume, empty disables")
	cmd.Flags().BoolVar(&settings.Output.SQLite.Enabled, "sqlite", settings.Output.SQLite.Enabled, "Persist events to the SQLite database")
	cmd.Flags().BoolVar(&settings.Output.Metrics.Enabled, "metrics", settings.Output.Metrics.Enabled, "Expose Prometheus metrics during the run")
}
