package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/ics"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rasheuristics/CalAI-sub003/internal/store"
	"github.com/spf13/cobra"
)

var (
	importSource string
	importFrom   string
	importTo     string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSource, "source", "native", "source tag for imported events (native, google, outlook)")
	importCmd.Flags().StringVar(&importFrom, "from", "", "start of the expansion window (YYYY-MM-DD, default 30 days ago)")
	importCmd.Flags().StringVar(&importTo, "to", "", "end of the expansion window (YYYY-MM-DD, default 1 year ahead)")
}

var importCmd = &cobra.Command{
	Use:   "import [path-or-url ...]",
	Short: "Import ICS calendars",
	Long:  "Import events from ICS files or URLs. Recurring events are expanded\ninto instances inside the window. With no arguments, imports every\nfeed configured under sources.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		loc, err := appConfig.Location()
		if err != nil {
			return err
		}

		window, err := importWindow(loc)
		if err != nil {
			return err
		}

		if err := appConfig.EnsureDirectories(); err != nil {
			return err
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		importer := ics.NewImporter(store.NewEventRepository(db))

		type feed struct {
			path   string
			source models.EventSource
		}

		var feeds []feed
		if len(args) > 0 {
			src := models.EventSource(importSource)
			if !src.Valid() {
				return fmt.Errorf("invalid --source: %s", importSource)
			}
			for _, path := range args {
				feeds = append(feeds, feed{path: path, source: src})
			}
		} else {
			for _, sc := range appConfig.Sources {
				src := models.EventSource(sc.Source)
				if sc.Source == "" {
					src = models.SourceNative
				}
				feeds = append(feeds, feed{path: sc.Path, source: src})
			}
		}
		if len(feeds) == 0 {
			fmt.Fprintln(os.Stdout, "No feeds to import. Pass a path or configure sources.")
			return nil
		}

		total := 0
		for _, f := range feeds {
			cfg := ics.ExpandConfig{
				DisplayLocation: loc,
				RangeStart:      window.start,
				RangeEnd:        window.end,
				Source:          f.source,
			}
			written, err := importer.ImportPath(ctx, f.path, cfg)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", f.path, err)
			}
			fmt.Fprintf(os.Stdout, "%s: %d events\n", f.path, written)
			total += written
		}
		fmt.Fprintf(os.Stdout, "Imported %d events.\n", total)
		return nil
	},
}

type timeWindow struct {
	start time.Time
	end   time.Time
}

func importWindow(loc *time.Location) (timeWindow, error) {
	now := time.Now().In(loc)
	w := timeWindow{
		start: now.AddDate(0, 0, -30),
		end:   now.AddDate(1, 0, 0),
	}

	var err error
	if importFrom != "" {
		w.start, err = time.ParseInLocation("2006-01-02", importFrom, loc)
		if err != nil {
			return timeWindow{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if importTo != "" {
		w.end, err = time.ParseInLocation("2006-01-02", importTo, loc)
		if err != nil {
			return timeWindow{}, fmt.Errorf("invalid --to: %w", err)
		}
		w.end = w.end.AddDate(0, 0, 1)
	}
	if !w.end.After(w.start) {
		return timeWindow{}, fmt.Errorf("--to must be after --from")
	}
	return w, nil
}
