package ics

import (
	"testing"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/models"
)

func expandWindow() ExpandConfig {
	return ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Source:          models.SourceGoogle,
	}
}

func TestExpandSingleEvent(t *testing.T) {
	start := time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:     "single-1",
		Summary: "One-off",
		Start:   start,
		End:     start.Add(time.Hour),
	}}

	out, err := Expand(events, expandWindow())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expanded %d events, want 1", len(out))
	}
	if out[0].ID != "single-1" {
		t.Errorf("single event id = %q, want the UID", out[0].ID)
	}
	if out[0].Source != models.SourceGoogle {
		t.Errorf("source = %s, want google", out[0].Source)
	}
}

func TestExpandSingleOutsideWindowDropped(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:   "old",
		Start: start,
		End:   start.Add(time.Hour),
	}}

	out, err := Expand(events, expandWindow())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expanded %d events, want 0", len(out))
	}
}

func TestExpandWeeklyWithExdate(t *testing.T) {
	start := time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "weekly-1",
		Summary:  "Weekly sync",
		Start:    start,
		End:      start.Add(time.Hour),
		RawRRule: "FREQ=WEEKLY;COUNT=4",
		ExDates:  []time.Time{start.AddDate(0, 0, 7)},
	}}

	out, err := Expand(events, expandWindow())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// 4 weekly occurrences minus the excluded second one.
	if len(out) != 3 {
		t.Fatalf("expanded %d events, want 3", len(out))
	}

	for _, ev := range out {
		if ev.Start.Equal(start.AddDate(0, 0, 7)) {
			t.Error("EXDATE occurrence still present")
		}
		if got := ev.End.Sub(ev.Start); got != time.Hour {
			t.Errorf("occurrence duration = %v, want 1h", got)
		}
	}

	// Instance IDs are stable and derived from UID + start.
	wantID := "weekly-1/20250519T090000Z"
	if out[0].ID != wantID {
		t.Errorf("first instance id = %q, want %q", out[0].ID, wantID)
	}
}

func TestExpandWindowBoundsRecurrence(t *testing.T) {
	start := time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "daily-1",
		Start:    start,
		End:      start.Add(30 * time.Minute),
		RawRRule: "FREQ=DAILY", // unbounded
	}}

	cfg := expandWindow()
	cfg.RangeStart = time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	cfg.RangeEnd = time.Date(2025, 5, 23, 0, 0, 0, 0, time.UTC)

	out, err := Expand(events, cfg)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// Occurrences on the 20th, 21st and 22nd; the 23rd's 09:00 falls past
	// the window end.
	if len(out) != 3 {
		t.Fatalf("expanded %d events, want 3", len(out))
	}
	if !out[0].Start.Equal(time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("first occurrence = %v", out[0].Start)
	}
}

func TestExpandOccurrenceCap(t *testing.T) {
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "spam",
		Start:    start,
		End:      start.Add(time.Minute),
		RawRRule: "FREQ=MINUTELY",
	}}

	cfg := expandWindow()
	cfg.MaxOccurrencesPerEvent = 10

	out, err := Expand(events, cfg)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 10 {
		t.Errorf("expanded %d events, want capped at 10", len(out))
	}
}

func TestExpandOverrideReplacesInstance(t *testing.T) {
	start := time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC)
	moved := time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)
	rid := start.AddDate(0, 0, 1)

	events := []ParsedEvent{
		{
			UID:      "series-1",
			Summary:  "Series",
			Start:    start,
			End:      start.Add(time.Hour),
			RawRRule: "FREQ=DAILY;COUNT=3",
		},
		{
			UID:          "series-1",
			Summary:      "Moved instance",
			Start:        moved,
			End:          moved.Add(time.Hour),
			RecurrenceID: &rid,
			IsOverride:   true,
		},
	}

	out, err := Expand(events, expandWindow())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expanded %d events, want 3", len(out))
	}

	var found bool
	for _, ev := range out {
		if ev.Title == "Moved instance" {
			found = true
			if !ev.Start.Equal(moved) {
				t.Errorf("override start = %v, want %v", ev.Start, moved)
			}
		}
		if ev.Start.Equal(rid) {
			t.Error("overridden instance kept its original time")
		}
	}
	if !found {
		t.Error("override instance missing from expansion")
	}
}

func TestExpandAllDayRecurrence(t *testing.T) {
	start := time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC)
	events := []ParsedEvent{{
		UID:      "allday-1",
		Summary:  "Standing day off",
		Start:    start,
		End:      start.AddDate(0, 0, 1),
		AllDay:   true,
		RawRRule: "FREQ=WEEKLY;COUNT=2",
	}}

	out, err := Expand(events, expandWindow())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expanded %d events, want 2", len(out))
	}
	for _, ev := range out {
		if !ev.AllDay {
			t.Error("occurrence lost all-day flag")
		}
		if got := ev.End.Sub(ev.Start); got != 24*time.Hour {
			t.Errorf("all-day occurrence span = %v, want 24h", got)
		}
	}
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	cfg := expandWindow()
	cfg.RangeStart, cfg.RangeEnd = cfg.RangeEnd, cfg.RangeStart

	if _, err := Expand(nil, cfg); err == nil {
		t.Error("inverted window accepted")
	}
}

func TestExpandBadRRuleSkipsEvent(t *testing.T) {
	start := time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC)
	events := []ParsedEvent{
		{
			UID:      "bad",
			Start:    start,
			End:      start.Add(time.Hour),
			RawRRule: "FREQ=NONSENSE",
		},
		{
			UID:   "good",
			Start: start,
			End:   start.Add(time.Hour),
		},
	}

	out, err := Expand(events, expandWindow())
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 1 || out[0].ID != "good" {
		t.Errorf("expansion = %+v, want only the good event", out)
	}
}
