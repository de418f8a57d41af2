package models

import (
	"time"

	"github.com/google/uuid"
)

// RepositionIntent is the engine's request to move an event. The engine
// never applies it itself; an external store commits it and the updated
// event flows back through the next rebuild.
type RepositionIntent struct {
	// ID uniquely identifies this intent instance.
	ID string `json:"id"`

	// EventID is the event to move.
	EventID string `json:"event_id"`

	// Source routes the commit to the right backend.
	Source EventSource `json:"source"`

	// NewStart / NewEnd are the snapped target times.
	NewStart time.Time `json:"new_start"`
	NewEnd   time.Time `json:"new_end"`

	// IssuedAt is when the drag was released.
	IssuedAt time.Time `json:"issued_at"`
}

// NewRepositionIntent builds an intent for the given event and target span.
func NewRepositionIntent(event CalendarEvent, newStart, newEnd time.Time) RepositionIntent {
	return RepositionIntent{
		ID:       uuid.New().String(),
		EventID:  event.ID,
		Source:   event.Source,
		NewStart: newStart,
		NewEnd:   newEnd,
		IssuedAt: time.Now().UTC(),
	}
}
