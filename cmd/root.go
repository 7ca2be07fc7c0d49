// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camsift/camsift/cmd/detect"
	"github.com/camsift/camsift/cmd/filter"
	"github.com/camsift/camsift/cmd/label"
	"github.com/camsift/camsift/cmd/review"
	"github.com/camsift/camsift/internal/buildinfo"
	"github.com/camsift/camsift/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "camsift",
		Short:   "Surveillance footage event extraction CLI",
		Long:    "camsift filters detector output from chunked surveillance footage and extracts reviewable person-track events.",
		Version: buildinfo.Current().String(),
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		filter.Command(settings),
		detect.Command(settings),
		label.Command(settings),
		review.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags shared by every subcommand. Defaults come from
// viper so the config file and environment stay authoritative when a flag is
// not given.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Input.ChunkIndex, "chunk-index", viper.GetString("input.chunkindex"), "Path to the chunk index JSON")
	rootCmd.PersistentFlags().StringVar(&settings.Input.DetectionsDir, "detections-dir", viper.GetString("input.detectionsdir"), "Directory holding per-chunk detections JSON")
	rootCmd.PersistentFlags().StringVarP(&settings.Output.Path, "output", "o", viper.GetString("output.path"), "Directory for JSON reports")
	rootCmd.PersistentFlags().IntVar(&settings.Pipeline.Workers, "workers", viper.GetInt("pipeline.workers"), "Chunk workers, 0 uses all CPUs")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
