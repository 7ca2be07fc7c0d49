// Package review implements subcommands for the event review workflow.
package review

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/camsift/camsift/internal/conf"
	"github.com/camsift/camsift/internal/datastore"
	"github.com/camsift/camsift/internal/logging"
)

// Command creates the review command group backed by the event database.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and update stored events",
	}

	cmd.AddCommand(listCommand(settings))
	cmd.AddCommand(setCommand(settings))

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var chunkID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored events and their review state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(settings, func(store *datastore.SQLiteStore) error {
				records, err := loadRecords(store, chunkID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "EVENT\tCHUNK\tTRACK\tDURATION\tCONFIDENCE\tSTATE\tLABEL")
				for i := range records {
					r := &records[i]
					fmt.Fprintf(w, "%s\t%s\t%d\t%.2fs\t%.2f\t%s\t%s\n",
						r.EventID, r.ChunkID, r.TrackID,
						r.DurationSeconds, r.MeanConfidence,
						r.ReviewState, r.Label)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				counts, err := store.CountByReviewState()
				if err != nil {
					return err
				}
				fmt.Printf("\n%d events, %d pending review\n",
					len(records), counts[datastore.ReviewPending])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chunkID, "chunk", "", "Limit to one chunk")

	return cmd
}

func setCommand(settings *conf.Settings) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "set [event-id] [confirmed|rejected|pending]",
		Short: "Set the review state of an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(settings, func(store *datastore.SQLiteStore) error {
				return store.SetReview(args[0], args[1], label)
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Behavior label to record with the review")

	return cmd
}

func loadRecords(store *datastore.SQLiteStore, chunkID string) ([]datastore.EventRecord, error) {
	if chunkID != "" {
		return store.GetEventsByChunk(chunkID)
	}
	return store.GetAllEvents()
}

func withStore(settings *conf.Settings, fn func(*datastore.SQLiteStore) error) error {
	logger := logging.ForService("review")
	store := datastore.NewSQLite(settings.Output.SQLite.Path, logger)
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing event database failed", "error", err)
		}
	}()
	return fn(store)
}
