package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rasheuristics/CalAI-sub003/internal/drag"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rasheuristics/CalAI-sub003/internal/schedule"
	"github.com/rasheuristics/CalAI-sub003/internal/timeline"
)

type staticStore struct {
	events []models.CalendarEvent
}

func (s *staticStore) EventsForRange(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, ev := range s.events {
		if ev.Start.Before(end) && !ev.End.Before(start) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *staticStore) Reposition(ctx context.Context, eventID string, newStart, newEnd time.Time) error {
	return nil
}

func testModel(t *testing.T, events ...models.CalendarEvent) Model {
	t.Helper()
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	builder := timeline.NewBuilder(timeline.DefaultLayoutParams(), time.UTC)
	drags := drag.NewEngine(drag.DefaultConfig())

	service, err := schedule.NewService(context.Background(), &staticStore{events: events}, builder, drags, day)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	m := NewModel(context.Background(), service, drags, nil, DefaultTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func TestViewRendersDayAndEvents(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	m := testModel(t, models.CalendarEvent{
		ID:       "ev-1",
		Title:    "Standup",
		Location: "Room 4",
		Start:    day.Add(9 * time.Hour),
		End:      day.Add(10 * time.Hour),
		Source:   models.SourceNative,
	})

	out := m.View()
	if !strings.Contains(out, "Tuesday, 20 May 2025") {
		t.Error("header date missing")
	}
	if !strings.Contains(out, "Standup") {
		t.Error("event title missing")
	}
	if !strings.Contains(out, "09:00 - 10:00") {
		t.Error("event span missing")
	}
	if !strings.Contains(out, "Room 4") {
		t.Error("location missing")
	}
	if !strings.Contains(out, "free") {
		t.Error("gap rows missing")
	}
}

func TestViewRendersAllDayStrip(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	m := testModel(t, models.CalendarEvent{
		ID:     "holiday",
		Title:  "Bank holiday",
		Start:  day,
		End:    day.AddDate(0, 0, 1),
		AllDay: true,
		Source: models.SourceOutlook,
	})

	out := m.View()
	if !strings.Contains(out, "all-day") {
		t.Error("all-day strip missing")
	}
	if !strings.Contains(out, "Bank holiday") {
		t.Error("all-day title missing")
	}
}

func TestViewEmptyDay(t *testing.T) {
	m := testModel(t)
	out := m.View()
	// A day with no events is one full-day gap.
	if !strings.Contains(out, "00:00 - 00:00") && !strings.Contains(out, "24h") {
		t.Errorf("empty day gap not rendered:\n%s", out)
	}
}

func TestViewBeforeSizeKnown(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	builder := timeline.NewBuilder(timeline.DefaultLayoutParams(), time.UTC)
	drags := drag.NewEngine(drag.DefaultConfig())
	service, err := schedule.NewService(context.Background(), &staticStore{}, builder, drags, day)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	m := NewModel(context.Background(), service, drags, nil, DefaultTheme())
	if got := m.View(); got != "loading..." {
		t.Errorf("pre-size view = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Minute, "30m"},
		{time.Hour, "1h"},
		{90 * time.Minute, "1h30m"},
		{2*time.Hour + 5*time.Minute, "2h05m"},
		{24 * time.Hour, "24h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestGapRows(t *testing.T) {
	params := timeline.DefaultLayoutParams()
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	short := timeline.Segment{Kind: timeline.SegmentGap, Start: day, End: day.Add(10 * time.Minute)}
	if got := gapRows(short, params); got != 1 {
		t.Errorf("short gap rows = %d, want 1", got)
	}

	long := timeline.Segment{Kind: timeline.SegmentGap, Start: day, End: day.Add(12 * time.Hour), Expanded: true}
	if got := gapRows(long, params); got != 6 {
		t.Errorf("long gap rows = %d, want capped at 6", got)
	}
}
