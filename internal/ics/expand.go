package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/logging"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/teambition/rrule-go"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the timezone occurrences are converted into.
	// Nil means time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the expansion window (inclusive).
	RangeStart time.Time
	RangeEnd   time.Time

	// Source tags the produced events.
	Source models.EventSource

	// MaxOccurrencesPerEvent caps runaway expansions. Zero means the
	// default cap.
	MaxOccurrencesPerEvent int
}

// Expand turns parsed VEVENTs into concrete CalendarEvents within the
// window, handling single events, RRULE recurrence, EXDATE removals and
// RECURRENCE-ID overrides. Recurring instances get an ID derived from
// the UID and the instance start so repeated imports stay stable.
func Expand(events []ParsedEvent, cfg ExpandConfig) ([]models.CalendarEvent, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}
	if !cfg.Source.Valid() {
		cfg.Source = models.SourceNative
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	order := make([]string, 0)

	for _, ev := range events {
		if ev.IsOverride {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	logger := logging.Component("ics")
	out := make([]models.CalendarEvent, 0)

	for _, uid := range order {
		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, overridesByUID[uid], cfg)
			if hitCap {
				logger.Warn().Str("uid", uid).Int("cap", cfg.MaxOccurrencesPerEvent).Msg("truncated recurrence expansion")
			}
			out = append(out, occ...)
		}
	}

	return out, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]models.CalendarEvent, bool) {
	if ev.RawRRule == "" {
		return expandSingle(ev, overrides, cfg), false
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []models.CalendarEvent {
	if !rangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}

	start, end := ev.Start, ev.End
	if o, ok := findOverride(overrides, start); ok {
		start, end = o.Start, o.End
		ev = o
	}
	return []models.CalendarEvent{makeEvent(ev, ev.UID, start, end, cfg)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]models.CalendarEvent, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		logger := logging.Component("ics")
		logger.Warn().Err(err).Str("uid", ev.UID).Str("rrule", ev.RawRRule).Msg("failed to parse RRULE")
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())
	occTimes := set.Between(rangeStart, rangeEnd, true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]models.CalendarEvent, 0, len(occTimes))
	for _, occStart := range occTimes {
		var occEnd time.Time
		if ev.AllDay {
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.AddDate(0, 0, 1)
		} else {
			occEnd = occStart.Add(ev.End.Sub(ev.Start))
		}

		instEv, start, end := ev, occStart, occEnd
		if o, ok := findOverride(overrides, occStart); ok {
			instEv, start, end = o, o.Start, o.End
		}

		id := fmt.Sprintf("%s/%s", ev.UID, occStart.UTC().Format("20060102T150405Z"))
		out = append(out, makeEvent(instEv, id, start, end, cfg))
	}

	return out, hitCap
}

// findOverride matches an override whose RECURRENCE-ID equals the
// instance start.
func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.RecurrenceID == nil {
			continue
		}
		if ov.RecurrenceID.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeEvent(ev ParsedEvent, id string, start, end time.Time, cfg ExpandConfig) models.CalendarEvent {
	return models.CalendarEvent{
		ID:       id,
		Title:    ev.Summary,
		Location: ev.Location,
		Start:    start.In(cfg.DisplayLocation),
		End:      end.In(cfg.DisplayLocation),
		AllDay:   ev.AllDay,
		Source:   cfg.Source,
	}.Normalized()
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
