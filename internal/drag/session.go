// Package drag implements the drag-reposition state machine: a held press
// arms a drag, pointer motion locks one axis, and release either commits a
// snapped reposition intent or reverts.
package drag

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rs/zerolog"
)

// Session errors.
var (
	ErrSessionActive = errors.New("drag session already active for event")
	ErrSessionEnded  = errors.New("drag session has ended")
	ErrNotPressed    = errors.New("session is not in a pressed state")
)

// Phase is the session's position in the drag state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePressing Phase = "pressing"
	PhaseArmed    Phase = "armed"
	PhaseLocked   Phase = "locked"
	PhaseEnded    Phase = "ended"
)

// Direction is the locked drag axis.
type Direction string

const (
	DirectionNone       Direction = "none"
	DirectionVertical   Direction = "vertical"
	DirectionHorizontal Direction = "horizontal"
)

// Config holds the drag engine's tuning knobs.
type Config struct {
	// ArmDelay is how long a press must be held before the drag arms.
	ArmDelay time.Duration

	// LockThreshold is the pointer travel (units) that locks a direction.
	LockThreshold float64

	// SnapMinutes is the time grid vertical drags snap to.
	SnapMinutes int

	// PxPerMinute converts vertical travel to minutes.
	PxPerMinute float64

	// DayColumnWidth converts horizontal travel to whole days.
	DayColumnWidth float64

	// WeekContext enables the horizontal (day-change) axis. Outside a
	// week carousel all motion is treated as vertical.
	WeekContext bool
}

// DefaultConfig returns the stock drag configuration.
func DefaultConfig() Config {
	return Config{
		ArmDelay:       1 * time.Second,
		LockThreshold:  10,
		SnapMinutes:    15,
		PxPerMinute:    1.0,
		DayColumnWidth: 120,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.ArmDelay <= 0 {
		c.ArmDelay = def.ArmDelay
	}
	if c.LockThreshold <= 0 {
		c.LockThreshold = def.LockThreshold
	}
	if c.SnapMinutes <= 0 {
		c.SnapMinutes = def.SnapMinutes
	}
	if c.PxPerMinute <= 0 {
		c.PxPerMinute = def.PxPerMinute
	}
	if c.DayColumnWidth <= 0 {
		c.DayColumnWidth = def.DayColumnWidth
	}
	return c
}

// Preview is the candidate reposition while a drag is in flight.
type Preview struct {
	Start          time.Time
	End            time.Time
	Direction      Direction
	SnappedMinutes int
	DayChange      int
}

// Result is the outcome of a released or cancelled session.
type Result struct {
	// Tap is true when the press ended before the arm timer fired; the
	// caller should treat it as a selection tap, not a drag.
	Tap bool

	// Committed is true when the release produced a reposition intent.
	Committed bool

	// Intent is non-nil only when Committed.
	Intent *models.RepositionIntent
}

// Session is one in-flight drag on a single event. It is ephemeral: it
// exists between pointer-down and pointer-up and is never persisted.
type Session struct {
	engine *Engine
	cfg    Config
	event  models.CalendarEvent
	logger zerolog.Logger

	mu         sync.Mutex
	phase      Phase
	direction  Direction
	generation uint64
	armTimer   *time.Timer

	dx, dy         float64
	snappedMinutes int
	dayChange      int

	// onArmed is the haptic hook; onDayChange broadcasts the live day
	// target so sibling UI can highlight it.
	onArmed     func()
	onDayChange func(int)
}

// OnArmed registers a callback fired when the arm timer elapses.
func (s *Session) OnArmed(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onArmed = fn
}

// OnDayChange registers a callback fired whenever the horizontal snap
// target changes.
func (s *Session) OnDayChange(fn func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDayChange = fn
}

// Phase returns the session's current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Direction returns the locked axis, or DirectionNone before locking.
func (s *Session) Direction() Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direction
}

// Press starts the arm timer. The timer is generation-guarded so a fire
// racing a release can never arm a dead session.
func (s *Session) Press() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return
	}
	s.phase = PhasePressing
	s.generation++
	gen := s.generation

	s.armTimer = time.AfterFunc(s.cfg.ArmDelay, func() {
		s.arm(gen)
	})
}

// arm transitions Pressing -> Armed when the timer fires for the live
// generation.
func (s *Session) arm(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.phase != PhasePressing {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseArmed
	armed := s.onArmed
	s.mu.Unlock()

	// Arming resets any parked offset left by a previous committed drag
	// on this event.
	s.engine.clearParked(s.event.ID)

	if armed != nil {
		armed()
	}
}

// Move feeds accumulated pointer deltas. Before the threshold is reached
// nothing happens; once travel exceeds it the direction locks and snap
// values update continuously.
func (s *Session) Move(dx, dy float64) {
	s.mu.Lock()

	if s.phase != PhaseArmed && s.phase != PhaseLocked {
		s.mu.Unlock()
		return
	}

	s.dx, s.dy = dx, dy

	if s.phase == PhaseArmed {
		if !s.lockDirection() {
			s.mu.Unlock()
			return
		}
		s.phase = PhaseLocked
	}

	var notify func(int)
	var target int
	switch s.direction {
	case DirectionVertical:
		s.snappedMinutes = snapMinutes(s.dy, s.cfg.PxPerMinute, s.cfg.SnapMinutes)
	case DirectionHorizontal:
		prev := s.dayChange
		s.dayChange = int(math.Round(s.dx / s.cfg.DayColumnWidth))
		if s.dayChange != prev {
			notify = s.onDayChange
			target = s.dayChange
		}
	}
	s.mu.Unlock()

	if notify != nil {
		notify(target)
	}
}

// lockDirection picks the drag axis once travel passes the threshold.
// Horizontal is only selectable in week context.
func (s *Session) lockDirection() bool {
	absX, absY := math.Abs(s.dx), math.Abs(s.dy)

	if s.cfg.WeekContext && absX >= s.cfg.LockThreshold && absX > absY {
		s.direction = DirectionHorizontal
		return true
	}
	if absY >= s.cfg.LockThreshold || (!s.cfg.WeekContext && absX >= s.cfg.LockThreshold) {
		s.direction = DirectionVertical
		return true
	}
	return false
}

// Preview returns the candidate start/end for the current snap state.
func (s *Session) Preview() Preview {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Preview{
		Start:          s.event.Start,
		End:            s.event.End,
		Direction:      s.direction,
		SnappedMinutes: s.snappedMinutes,
		DayChange:      s.dayChange,
	}
	switch s.direction {
	case DirectionVertical:
		shift := time.Duration(s.snappedMinutes) * time.Minute
		p.Start = s.event.Start.Add(shift)
		p.End = s.event.End.Add(shift)
	case DirectionHorizontal:
		p.Start = s.event.Start.AddDate(0, 0, s.dayChange)
		p.End = s.event.End.AddDate(0, 0, s.dayChange)
	}
	return p
}

// Release ends the session. A press released before arming is a tap; a
// locked drag with a net change commits a reposition intent; everything
// else reverts. Date arithmetic that cannot produce a valid interval
// falls back to revert rather than emitting a broken intent.
func (s *Session) Release() Result {
	s.mu.Lock()

	phase := s.phase
	s.generation++
	if s.armTimer != nil {
		s.armTimer.Stop()
		s.armTimer = nil
	}
	s.phase = PhaseEnded

	var res Result
	switch {
	case phase == PhasePressing:
		res.Tap = true
	case phase == PhaseLocked && s.direction == DirectionVertical && s.snappedMinutes != 0:
		shift := time.Duration(s.snappedMinutes) * time.Minute
		res = s.commit(s.event.Start.Add(shift), s.event.End.Add(shift),
			float64(s.snappedMinutes)*s.cfg.PxPerMinute)
	case phase == PhaseLocked && s.direction == DirectionHorizontal && s.dayChange != 0:
		res = s.commit(s.event.Start.AddDate(0, 0, s.dayChange), s.event.End.AddDate(0, 0, s.dayChange),
			float64(s.dayChange)*s.cfg.DayColumnWidth)
	}
	s.mu.Unlock()

	s.engine.end(s.event.ID)
	return res
}

// commit validates the shifted interval and builds the intent. Called
// with s.mu held.
func (s *Session) commit(newStart, newEnd time.Time, offset float64) Result {
	if newEnd.Before(newStart) || newStart.IsZero() || newEnd.IsZero() {
		s.logger.Warn().
			Str("event_id", s.event.ID).
			Time("new_start", newStart).
			Time("new_end", newEnd).
			Msg("snapped interval is invalid, reverting drag")
		return Result{}
	}

	intent := models.NewRepositionIntent(s.event, newStart, newEnd)
	s.engine.park(s.event.ID, offset)
	return Result{Committed: true, Intent: &intent}
}

// Cancel aborts the session with no side effects; a pending arm timer is
// disarmed cleanly.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.generation++
	if s.armTimer != nil {
		s.armTimer.Stop()
		s.armTimer = nil
	}
	s.phase = PhaseEnded
	s.mu.Unlock()

	s.engine.end(s.event.ID)
}

// snapMinutes converts a vertical pixel delta to a snapped time delta.
func snapMinutes(deltaY, pxPerMinute float64, snap int) int {
	rawMinutes := deltaY / pxPerMinute
	return int(math.Round(rawMinutes/float64(snap))) * snap
}
