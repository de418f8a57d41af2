// Package carousel coordinates the three-day sliding window behind the
// week view: previous/current/next day layouts plus the horizontal swipe
// state machine that commits or reverts a day navigation.
package carousel

import (
	"sync"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/logging"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rasheuristics/CalAI-sub003/internal/timeline"
	"github.com/rs/zerolog"
)

// minSwipe is the minimum travel (units) before a swipe gesture engages.
const minSwipe = 30

// Phase is the carousel's position in its swipe state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDragging   Phase = "dragging"
	PhaseCommitting Phase = "committing"
	PhaseReverting  Phase = "reverting"
)

// EventsFunc supplies the raw events for a day.
type EventsFunc func(day time.Time) ([]models.CalendarEvent, error)

// Outcome is the decision taken when a swipe is released. The day
// mutation itself is deferred until FinishCommit, after the off-screen
// animation has run.
type Outcome struct {
	Commit bool
	Delta  int
}

// Carousel maintains layouts for day-1, day, day+1 and a shared swipe
// offset. The three layouts share no mutable state and are rebuilt around
// the new center whenever the selected day changes.
type Carousel struct {
	builder  *timeline.Builder
	expanded *timeline.ExpandedGaps
	sideSet  *timeline.ExpandedGaps
	events   EventsFunc
	logger   zerolog.Logger

	mu           sync.Mutex
	day          time.Time
	width        float64
	threshold    float64
	phase        Phase
	offset       float64
	pendingDelta int
	layouts      [3]timeline.DayLayout
}

// New creates a carousel centered on day and builds its initial layouts.
// Width is the screen width in the same units as swipe offsets; threshold
// is the fraction of width past which a release commits.
func New(builder *timeline.Builder, expanded *timeline.ExpandedGaps, events EventsFunc, day time.Time, width, threshold float64) (*Carousel, error) {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.5
	}
	c := &Carousel{
		builder:   builder,
		expanded:  expanded,
		sideSet:   timeline.NewExpandedGaps(),
		events:    events,
		logger:    logging.Component("carousel"),
		day:       timeline.StartOfDay(day, builder.Location()),
		width:     width,
		threshold: threshold,
		phase:     PhaseIdle,
	}
	c.expanded.SetDay(c.day, builder.Location())
	if err := c.rebuildLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

// Day returns the selected (center) day.
func (c *Carousel) Day() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// Phase returns the swipe state machine phase.
func (c *Carousel) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Offset returns the current horizontal swipe offset.
func (c *Carousel) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// SetWidth updates the screen width used for the commit threshold.
func (c *Carousel) SetWidth(width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width > 0 {
		c.width = width
	}
}

// Layouts returns the previous, current and next day layouts.
func (c *Carousel) Layouts() (prev, cur, next timeline.DayLayout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layouts[0], c.layouts[1], c.layouts[2]
}

// Layout returns the center day's layout.
func (c *Carousel) Layout() timeline.DayLayout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layouts[1]
}

// BeginSwipe engages the swipe gesture when the initial travel is long
// enough and more horizontal than vertical. Returns whether it engaged.
func (c *Carousel) BeginSwipe(dx, dy float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle {
		return false
	}
	if abs(dx) < minSwipe || abs(dx) <= abs(dy) {
		return false
	}
	c.phase = PhaseDragging
	c.offset = dx
	return true
}

// UpdateSwipe records the live swipe offset while dragging.
func (c *Carousel) UpdateSwipe(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseDragging {
		c.offset = offset
	}
}

// ReleaseSwipe decides commit vs revert. Past half the screen width (or
// the configured fraction) the active day animates off-screen and the day
// change is applied later by FinishCommit; otherwise the caller animates
// back and calls FinishRevert.
func (c *Carousel) ReleaseSwipe() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseDragging {
		return Outcome{}
	}

	if abs(c.offset) > c.width*c.threshold {
		c.phase = PhaseCommitting
		if c.offset < 0 {
			c.pendingDelta = 1 // swiped left, move forward a day
		} else {
			c.pendingDelta = -1
		}
		return Outcome{Commit: true, Delta: c.pendingDelta}
	}

	c.phase = PhaseReverting
	return Outcome{}
}

// FinishCommit applies the deferred day change after the off-screen
// animation completes: the selected day advances, the offset resets with
// no animation, and the three layouts rebuild around the new center.
func (c *Carousel) FinishCommit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseCommitting {
		return nil
	}
	return c.applyDayChangeLocked(c.pendingDelta)
}

// FinishRevert completes a below-threshold release: offset returns to
// zero and no date changes.
func (c *Carousel) FinishRevert() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseReverting {
		return
	}
	c.offset = 0
	c.phase = PhaseIdle
}

// AdvanceDay navigates directly by delta whole days (keyboard/API path,
// no gesture involved).
func (c *Carousel) AdvanceDay(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if delta == 0 {
		return nil
	}
	return c.applyDayChangeLocked(delta)
}

// Rebuild refreshes all three layouts from current events, e.g. after a
// sync or a committed reposition. The selected day is unchanged so
// expansion state survives.
func (c *Carousel) Rebuild() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuildLocked()
}

func (c *Carousel) applyDayChangeLocked(delta int) error {
	c.day = c.day.AddDate(0, 0, delta)
	c.offset = 0
	c.pendingDelta = 0
	c.phase = PhaseIdle
	c.expanded.SetDay(c.day, c.builder.Location())
	return c.rebuildLocked()
}

func (c *Carousel) rebuildLocked() error {
	days := [3]time.Time{
		c.day.AddDate(0, 0, -1),
		c.day,
		c.day.AddDate(0, 0, 1),
	}
	for i, day := range days {
		events, err := c.events(day)
		if err != nil {
			return err
		}
		set := c.sideSet
		if i == 1 {
			set = c.expanded
		}
		layout, err := c.builder.Build(events, day, set)
		if err != nil {
			return err
		}
		c.layouts[i] = layout
	}
	return nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
