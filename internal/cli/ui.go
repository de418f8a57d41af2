package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/carousel"
	"github.com/rasheuristics/CalAI-sub003/internal/drag"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rasheuristics/CalAI-sub003/internal/schedule"
	"github.com/rasheuristics/CalAI-sub003/internal/store"
	"github.com/rasheuristics/CalAI-sub003/internal/timeline"
	"github.com/rasheuristics/CalAI-sub003/internal/tui"
	"github.com/spf13/cobra"
)

var uiDate string

func init() {
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(weekCmd)

	for _, cmd := range []*cobra.Command{dayCmd, weekCmd} {
		cmd.Flags().StringVar(&uiDate, "date", "", "day to open (YYYY-MM-DD, default today)")
	}
}

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Open a single day timeline",
	Long:  "Open the interactive timeline for one day. Horizontal gestures are\ndisabled; all drag motion repositions within the day.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(false)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Open the week carousel",
	Long:  "Open the interactive timeline with the week carousel: horizontal\nswipes and moves navigate between adjacent days.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(true)
	},
}

func runTUI(weekMode bool) error {
	ctx := context.Background()

	loc, err := appConfig.Location()
	if err != nil {
		return err
	}

	day := time.Now().In(loc)
	if uiDate != "" {
		day, err = time.ParseInLocation("2006-01-02", uiDate, loc)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	if err := appConfig.EnsureDirectories(); err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.NewEventRepository(db)
	builder := timeline.NewBuilder(layoutParams(), loc)
	drags := drag.NewEngine(dragConfig(weekMode))

	service, err := schedule.NewService(ctx, repo, builder, drags, day)
	if err != nil {
		return err
	}

	var car *carousel.Carousel
	if weekMode {
		eventsFn := func(d time.Time) ([]models.CalendarEvent, error) {
			return service.Events(ctx, d)
		}
		car, err = carousel.New(builder, service.ExpandedGaps(), eventsFn, day, 80, appConfig.TUI.SwipeThreshold)
		if err != nil {
			return err
		}
	}

	return tui.Run(ctx, service, drags, car, tui.ThemeByName(appConfig.TUI.Theme))
}

func layoutParams() timeline.LayoutParams {
	return timeline.LayoutParams{
		PxPerMinute:        appConfig.Timeline.PxPerMinute,
		GapThreshold:       time.Duration(appConfig.Timeline.GapThresholdMinutes) * time.Minute,
		CollapsedGapHeight: appConfig.Timeline.CollapsedGapHeight,
		MaxLanes:           appConfig.Timeline.MaxLanes,
	}
}

func dragConfig(weekContext bool) drag.Config {
	return drag.Config{
		ArmDelay:       appConfig.Drag.ArmDelay,
		LockThreshold:  appConfig.Drag.LockThreshold,
		SnapMinutes:    appConfig.Drag.SnapMinutes,
		PxPerMinute:    appConfig.Timeline.PxPerMinute,
		DayColumnWidth: appConfig.Drag.DayColumnWidth,
		WeekContext:    weekContext,
	}
}
