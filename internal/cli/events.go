package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rasheuristics/CalAI-sub003/internal/store"
	"github.com/spf13/cobra"
)

var (
	eventsListDate string

	eventsAddTitle    string
	eventsAddLocation string
	eventsAddStart    string
	eventsAddEnd      string
	eventsAddAllDay   bool
	eventsAddSource   string
)

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsRemoveCmd)

	eventsListCmd.Flags().StringVar(&eventsListDate, "date", "", "day to list (YYYY-MM-DD, default today)")

	eventsAddCmd.Flags().StringVar(&eventsAddTitle, "title", "", "event title")
	eventsAddCmd.Flags().StringVar(&eventsAddLocation, "location", "", "event location")
	eventsAddCmd.Flags().StringVar(&eventsAddStart, "start", "", "start time (YYYY-MM-DDTHH:MM or YYYY-MM-DD for all-day)")
	eventsAddCmd.Flags().StringVar(&eventsAddEnd, "end", "", "end time (defaults to start + 1h, or day end for all-day)")
	eventsAddCmd.Flags().BoolVar(&eventsAddAllDay, "all-day", false, "mark the event all-day")
	eventsAddCmd.Flags().StringVar(&eventsAddSource, "source", "native", "event source (native, google, outlook)")
	_ = eventsAddCmd.MarkFlagRequired("start")
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage calendar events",
	Long:  "Add, list and remove events in the local store.",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a day's events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		loc, err := appConfig.Location()
		if err != nil {
			return err
		}
		day := time.Now().In(loc)
		if eventsListDate != "" {
			day, err = time.ParseInLocation("2006-01-02", eventsListDate, loc)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		events, err := store.NewEventRepository(db).EventsForDay(ctx, day, loc)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		if len(events) == 0 {
			fmt.Fprintln(os.Stdout, "No events.")
			return nil
		}

		writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tSTART\tEND\tSOURCE\tTITLE")
		for _, ev := range events {
			start, end := formatEventSpan(ev, loc)
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", ev.ID, start, end, ev.Source, ev.Title)
		}
		return writer.Flush()
	},
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		loc, err := appConfig.Location()
		if err != nil {
			return err
		}

		event, err := buildEvent(loc)
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

		if err := store.NewEventRepository(db).Create(ctx, event); err != nil {
			return fmt.Errorf("failed to add event: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Added %s (%s)\n", event.Title, event.ID)
		return nil
	},
}

var eventsRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.NewEventRepository(db).Delete(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to remove event: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Removed %s\n", args[0])
		return nil
	},
}

func buildEvent(loc *time.Location) (*models.CalendarEvent, error) {
	src := models.EventSource(eventsAddSource)
	if !src.Valid() {
		return nil, fmt.Errorf("invalid --source: %s", eventsAddSource)
	}

	start, err := parseEventTime(eventsAddStart, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --start: %w", err)
	}

	var end time.Time
	if eventsAddEnd != "" {
		end, err = parseEventTime(eventsAddEnd, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid --end: %w", err)
		}
	} else if eventsAddAllDay {
		end = start.AddDate(0, 0, 1)
	} else {
		end = start.Add(time.Hour)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--end is before --start")
	}

	return &models.CalendarEvent{
		Title:    eventsAddTitle,
		Location: eventsAddLocation,
		Start:    start,
		End:      end,
		AllDay:   eventsAddAllDay,
		Source:   src,
	}, nil
}

func parseEventTime(value string, loc *time.Location) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

func formatEventSpan(ev models.CalendarEvent, loc *time.Location) (string, string) {
	if ev.AllDay {
		return ev.Start.In(loc).Format("2006-01-02"), "all-day"
	}
	return ev.Start.In(loc).Format("2006-01-02 15:04"), ev.End.In(loc).Format("15:04")
}
