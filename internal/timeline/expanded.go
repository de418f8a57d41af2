package timeline

import (
	"sync"
	"time"
)

// GapKey identifies a gap across rebuilds by its start minute. Gap UUIDs
// change every build, so keying expansion on the start time lets a gap
// stay expanded through sync-driven rebuilds that keep its boundaries.
func GapKey(start time.Time) int64 {
	return start.Unix() / 60
}

// ExpandedGaps tracks which gaps the user has expanded. The set belongs
// to one day-view instance; changing the viewed day clears it so gaps on
// a newly-viewed day start collapsed.
type ExpandedGaps struct {
	mu   sync.Mutex
	day  time.Time
	keys map[int64]struct{}
}

// NewExpandedGaps creates an empty expansion set.
func NewExpandedGaps() *ExpandedGaps {
	return &ExpandedGaps{keys: make(map[int64]struct{})}
}

// Toggle flips the expansion state of the gap starting at start.
func (g *ExpandedGaps) Toggle(start time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := GapKey(start)
	if _, ok := g.keys[key]; ok {
		delete(g.keys, key)
	} else {
		g.keys[key] = struct{}{}
	}
}

// IsExpanded reports whether the gap starting at start is expanded.
func (g *ExpandedGaps) IsExpanded(start time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.keys[GapKey(start)]
	return ok
}

// SetDay records the viewed day, clearing the whole set when the day
// actually changes. Calling it again with the same day is a no-op, so
// incidental rebuilds keep their expansion state.
func (g *ExpandedGaps) SetDay(day time.Time, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	start := StartOfDay(day, loc)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.day.IsZero() && g.day.Equal(start) {
		return
	}
	g.day = start
	g.keys = make(map[int64]struct{})
}

// Clear drops all expansion state.
func (g *ExpandedGaps) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys = make(map[int64]struct{})
}

// Len returns the number of expanded gaps.
func (g *ExpandedGaps) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}
