package timeline

import (
	"testing"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rs/zerolog"
)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timedEvent(id string, start, end time.Time) models.CalendarEvent {
	return models.CalendarEvent{
		ID:     id,
		Title:  id,
		Start:  start,
		End:    end,
		Source: models.SourceNative,
	}
}

func TestFilterDayTimedEventsFollowStartDay(t *testing.T) {
	day := utcDay(2025, 5, 20)

	events := []models.CalendarEvent{
		timedEvent("on-day", day.Add(9*time.Hour), day.Add(10*time.Hour)),
		// Starts the day before and runs past midnight: belongs to the 19th only.
		timedEvent("overnight", day.Add(-2*time.Hour), day.Add(3*time.Hour)),
		timedEvent("next-day", day.Add(26*time.Hour), day.Add(27*time.Hour)),
	}

	_, timed, err := FilterDay(events, day, time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("FilterDay: %v", err)
	}
	if len(timed) != 1 || timed[0].ID != "on-day" {
		t.Fatalf("timed = %+v, want only on-day", timed)
	}

	_, prevTimed, err := FilterDay(events, day.AddDate(0, 0, -1), time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("FilterDay: %v", err)
	}
	if len(prevTimed) != 1 || prevTimed[0].ID != "overnight" {
		t.Fatalf("previous day timed = %+v, want only overnight", prevTimed)
	}
}

func TestFilterDayMultiDayAllDayAppearsEveryDay(t *testing.T) {
	start := utcDay(2025, 5, 20)
	// Three-day conference with the exclusive midnight end feeds produce.
	conference := models.CalendarEvent{
		ID:     "conf",
		Title:  "Conference",
		Start:  start,
		End:    start.AddDate(0, 0, 3),
		AllDay: true,
		Source: models.SourceGoogle,
	}

	for dayOffset := 0; dayOffset <= 2; dayOffset++ {
		day := start.AddDate(0, 0, dayOffset)
		allDay, _, err := FilterDay([]models.CalendarEvent{conference}, day, time.UTC, zerolog.Nop())
		if err != nil {
			t.Fatalf("FilterDay day+%d: %v", dayOffset, err)
		}
		if len(allDay) != 1 {
			t.Errorf("day+%d: all-day count = %d, want 1", dayOffset, len(allDay))
		}
	}

	allDay, _, err := FilterDay([]models.CalendarEvent{conference}, start.AddDate(0, 0, 3), time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("FilterDay day+3: %v", err)
	}
	if len(allDay) != 0 {
		t.Errorf("day+3: all-day count = %d, want 0", len(allDay))
	}
}

func TestFilterDayAllDayMidnightEndIsExclusive(t *testing.T) {
	day := utcDay(2025, 5, 20)
	// One-day holiday as `events add --all-day` and the ICS importer
	// store it: the end is the next midnight.
	holiday := models.CalendarEvent{
		ID:     "holiday",
		Title:  "Bank holiday",
		Start:  day,
		End:    day.AddDate(0, 0, 1),
		AllDay: true,
		Source: models.SourceNative,
	}

	allDay, _, err := FilterDay([]models.CalendarEvent{holiday}, day, time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("FilterDay: %v", err)
	}
	if len(allDay) != 1 {
		t.Errorf("holiday day: all-day count = %d, want 1", len(allDay))
	}

	allDay, _, err = FilterDay([]models.CalendarEvent{holiday}, day.AddDate(0, 0, 1), time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("FilterDay: %v", err)
	}
	if len(allDay) != 0 {
		t.Errorf("next day: all-day count = %d, want 0", len(allDay))
	}
}

func TestFilterDayAllDayInDayEndIncludesFinalDay(t *testing.T) {
	day := utcDay(2025, 5, 20)
	// An end inside a day still counts that day.
	offsite := models.CalendarEvent{
		ID:     "offsite",
		Title:  "Offsite",
		Start:  day,
		End:    day.AddDate(0, 0, 1).Add(12 * time.Hour),
		AllDay: true,
		Source: models.SourceNative,
	}

	for dayOffset := 0; dayOffset <= 1; dayOffset++ {
		allDay, _, err := FilterDay([]models.CalendarEvent{offsite}, day.AddDate(0, 0, dayOffset), time.UTC, zerolog.Nop())
		if err != nil {
			t.Fatalf("FilterDay day+%d: %v", dayOffset, err)
		}
		if len(allDay) != 1 {
			t.Errorf("day+%d: all-day count = %d, want 1", dayOffset, len(allDay))
		}
	}
}

func TestFilterDaySkipsMalformedEvents(t *testing.T) {
	day := utcDay(2025, 5, 20)

	events := []models.CalendarEvent{
		{Title: "no id", Start: day.Add(time.Hour), End: day.Add(2 * time.Hour), Source: models.SourceNative},
		{ID: "no-time", Source: models.SourceNative},
		timedEvent("good", day.Add(9*time.Hour), day.Add(10*time.Hour)),
	}

	allDay, timed, err := FilterDay(events, day, time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("FilterDay: %v", err)
	}
	if len(allDay) != 0 {
		t.Errorf("all-day = %+v, want none", allDay)
	}
	if len(timed) != 1 || timed[0].ID != "good" {
		t.Fatalf("timed = %+v, want only the well-formed event", timed)
	}
}

func TestFilterDayNormalizesInvertedIntervals(t *testing.T) {
	day := utcDay(2025, 5, 20)
	ev := timedEvent("inverted", day.Add(10*time.Hour), day.Add(9*time.Hour))

	_, timed, err := FilterDay([]models.CalendarEvent{ev}, day, time.UTC, zerolog.Nop())
	if err != nil {
		t.Fatalf("FilterDay: %v", err)
	}
	if len(timed) != 1 {
		t.Fatalf("timed count = %d, want 1", len(timed))
	}
	if !timed[0].End.Equal(timed[0].Start) {
		t.Errorf("inverted interval not collapsed: %v .. %v", timed[0].Start, timed[0].End)
	}
}
