// Package timeline implements the day-timeline layout engine: it filters
// events to a day, resolves overlaps into lanes, and emits a render-ready
// sequence of event and gap segments.
package timeline

import (
	"errors"
	"fmt"
	"time"
)

// Day boundary errors. A day view cannot render without valid boundaries,
// so these abort the whole build.
var (
	ErrNilLocation = errors.New("timezone location is required")
	ErrZeroDay     = errors.New("target day is required")
)

// DayBounds returns the half-open interval [startOfDay, startOfNextDay)
// for the given day in loc. The next-day boundary is computed with
// calendar arithmetic so DST transition days keep their real length.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		return time.Time{}, time.Time{}, ErrNilLocation
	}
	if day.IsZero() {
		return time.Time{}, time.Time{}, ErrZeroDay
	}

	start := StartOfDay(day, loc)
	end := start.AddDate(0, 0, 1)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid day bounds for %s", day.Format("2006-01-02"))
	}
	return start, end, nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	al, bl := a.In(loc), b.In(loc)
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}
