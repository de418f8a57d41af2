package drag

import (
	"sync"

	"github.com/rasheuristics/CalAI-sub003/internal/logging"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rs/zerolog"
)

// Engine owns drag sessions and the parked offsets left behind by
// committed drags. Only one session may be active per event; sessions on
// different events are independent.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	parked   map[string]float64
}

// NewEngine creates a drag engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg.normalized(),
		logger:   logging.Component("drag"),
		sessions: make(map[string]*Session),
		parked:   make(map[string]float64),
	}
}

// Config returns the engine's normalized configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Begin opens a session for the event. Returns ErrSessionActive if the
// event already has one in flight.
func (e *Engine) Begin(event models.CalendarEvent) (*Session, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	event = event.Normalized()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[event.ID]; ok {
		return nil, ErrSessionActive
	}

	s := &Session{
		engine:    e,
		cfg:       e.cfg,
		event:     event,
		logger:    e.logger,
		phase:     PhaseIdle,
		direction: DirectionNone,
	}
	e.sessions[event.ID] = s
	return s, nil
}

// Session returns the active session for an event, if any.
func (e *Engine) Session(eventID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[eventID]
	return s, ok
}

// ParkedOffset returns the visual offset an event was left at by its last
// committed drag. The offset persists until the event's next drag arms or
// a commit failure clears it.
func (e *Engine) ParkedOffset(eventID string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	off, ok := e.parked[eventID]
	return off, ok
}

// ClearParked drops an event's parked offset, e.g. after a failed commit
// or a rebuild from fresh data.
func (e *Engine) ClearParked(eventID string) {
	e.clearParked(eventID)
}

func (e *Engine) clearParked(eventID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.parked, eventID)
}

func (e *Engine) park(eventID string, offset float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parked[eventID] = offset
}

func (e *Engine) end(eventID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, eventID)
}
