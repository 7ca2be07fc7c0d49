// Package filter implements the activity-filter subcommand.
package filter

import (
	"github.com/spf13/cobra"

	"github.com/camsift/camsift/internal/analysis"
	"github.com/camsift/camsift/internal/conf"
)

// Command creates the filter command, which runs only the chunk-level
// activity filter and writes the active-chunks report.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Find chunks with person activity",
		Long:  "Run the activity filter over every chunk and report which chunks contain enough person activity to be worth full event detection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Filter(cmd.Context(), settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().IntVar(&settings.ActivityFilter.MinPersonFrames, "min-person-frames", settings.ActivityFilter.MinPersonFrames, "Minimum active frames to mark a chunk active")
	cmd.Flags().IntVar(&settings.ActivityFilter.SampleRate, "sample-rate", settings.ActivityFilter.SampleRate, "Feed every Nth frame to the activity filter")
	cmd.Flags().Float64Var(&settings.ActivityFilter.Gate.ConfThreshold, "conf-threshold", settings.ActivityFilter.Gate.ConfThreshold, "Minimum detection confidence")
}
