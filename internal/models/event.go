// Package models defines the core calendar data types shared across CalAI.
package models

import (
	"time"
)

// EventSource identifies which calendar backend an event came from.
// It only affects presentation (coloring) and commit routing, never layout.
type EventSource string

const (
	SourceNative  EventSource = "native"
	SourceGoogle  EventSource = "google"
	SourceOutlook EventSource = "outlook"
)

// Valid reports whether the source is one of the known backends.
func (s EventSource) Valid() bool {
	switch s {
	case SourceNative, SourceGoogle, SourceOutlook:
		return true
	}
	return false
}

// CalendarEvent is the normalized event abstraction all backends map into.
type CalendarEvent struct {
	// ID is an opaque identifier, stable and unique within a source.
	ID string `json:"id"`

	// Title is the display title. May be empty.
	Title string `json:"title,omitempty"`

	// Location is a free-form location string. May be empty.
	Location string `json:"location,omitempty"`

	// Start and End are timezone-aware instants. End >= Start is expected;
	// Normalized collapses violations to a zero-duration event at Start.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// AllDay marks day-granular events. Start/End are day boundaries and
	// may span multiple days.
	AllDay bool `json:"all_day"`

	// Source identifies the originating backend.
	Source EventSource `json:"source"`
}

// Duration returns the event length. Zero for inverted intervals.
func (e CalendarEvent) Duration() time.Duration {
	if e.End.Before(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}

// Normalized returns a copy with defensive fixes applied: an inverted
// interval becomes zero-duration at Start, an unknown source becomes
// native. It never fails; Validate is the strict counterpart.
func (e CalendarEvent) Normalized() CalendarEvent {
	out := e
	if out.End.Before(out.Start) {
		out.End = out.Start
	}
	if !out.Source.Valid() {
		out.Source = SourceNative
	}
	return out
}

// Validate checks the fields a well-formed event must carry.
func (e CalendarEvent) Validate() error {
	if e.ID == "" {
		return ErrMissingEventID
	}
	if e.Start.IsZero() {
		return ErrMissingEventTime
	}
	if !e.Source.Valid() {
		return ErrUnknownSource
	}
	return nil
}

// ClampedEvent is a day-scoped copy of a CalendarEvent whose span has been
// cut to fit the viewed day. Original is a non-owning back-reference kept
// for comparison only; it is never mutated through this struct.
type ClampedEvent struct {
	CalendarEvent

	// ClampedStart / ClampedEnd are true when clamping altered the
	// corresponding boundary of the original event.
	ClampedStart bool
	ClampedEnd   bool

	// Original points at the unclamped source event.
	Original *CalendarEvent
}

// Clamp produces a ClampedEvent restricted to [dayStart, dayEnd).
func Clamp(e CalendarEvent, dayStart, dayEnd time.Time) ClampedEvent {
	orig := e
	ce := ClampedEvent{CalendarEvent: e.Normalized(), Original: &orig}
	if ce.Start.Before(dayStart) {
		ce.Start = dayStart
		ce.ClampedStart = true
	}
	if ce.End.After(dayEnd) {
		ce.End = dayEnd
		ce.ClampedEnd = true
	}
	if ce.End.Before(ce.Start) {
		ce.End = ce.Start
	}
	return ce
}
