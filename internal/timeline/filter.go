package timeline

import (
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rs/zerolog"
)

// FilterDay splits events into the given day's all-day and timed buckets.
//
// An all-day event belongs to the day when the day lies inside the event's
// day-granular span, so a multi-day all-day event appears on every day it
// covers. Ends that land exactly on midnight are exclusive, matching the
// RFC 5545 DTEND convention the importer and the CLI emit; an end inside a
// day includes that day. A timed event belongs to the day only
// when its start instant falls on that calendar day; an event starting
// before midnight and ending after is not shown on the following day.
//
// Malformed events are skipped with a diagnostic rather than failing the
// build; a single bad event must never blank the day.
func FilterDay(events []models.CalendarEvent, day time.Time, loc *time.Location, logger zerolog.Logger) (allDay, timed []models.CalendarEvent, err error) {
	dayStart, _, err := DayBounds(day, loc)
	if err != nil {
		return nil, nil, err
	}

	for _, ev := range events {
		if verr := ev.Validate(); verr != nil {
			logger.Warn().Err(verr).Str("event_id", ev.ID).Str("title", ev.Title).Msg("skipping malformed event")
			continue
		}
		ev = ev.Normalized()

		if ev.AllDay {
			first := StartOfDay(ev.Start, loc)
			last := StartOfDay(ev.End, loc)
			if ev.End.Equal(last) && last.After(first) {
				last = last.AddDate(0, 0, -1)
			}
			if !dayStart.Before(first) && !dayStart.After(last) {
				allDay = append(allDay, ev)
			}
			continue
		}

		if SameDay(ev.Start, day, loc) {
			timed = append(timed, ev)
		}
	}

	return allDay, timed, nil
}
