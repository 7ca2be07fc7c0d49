// Package label implements the proposal-generation subcommand.
package label

import (
	"github.com/spf13/cobra"

	"github.com/camsift/camsift/internal/analysis"
	"github.com/camsift/camsift/internal/conf"
)

// Command creates the label command, which turns a written events summary
// into heuristic behavior proposals for human review.
func Command(settings *conf.Settings) *cobra.Command {
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Generate behavior proposals for detected events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Label(cmd.Context(), settings, summaryPath)
		},
	}

	cmd.Flags().StringVar(&summaryPath, "summary", "", "Events summary to label, defaults to the one in the output directory")
	cmd.Flags().Float64Var(&settings.Labeler.HighConfidenceThreshold, "high-confidence", settings.Labeler.HighConfidenceThreshold, "Proposals below this confidence always need review")

	return cmd
}
