package timeline

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rasheuristics/CalAI-sub003/internal/config"
	"github.com/rasheuristics/CalAI-sub003/internal/logging"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rs/zerolog"
)

// minGap is the floor under which inferred gaps are suppressed as visual
// noise. Events are never suppressed, only gaps.
const minGap = 60 * time.Second

// SegmentKind tags the two segment variants.
type SegmentKind string

const (
	SegmentGap   SegmentKind = "gap"
	SegmentEvent SegmentKind = "event"
)

// Segment is one unit of the day's visual timeline: either an inferred
// idle-time gap or a positioned event. Gap IDs are freshly generated per
// build; expansion state is keyed by the gap's start time instead (see
// ExpandedGaps), so it survives rebuilds that keep the gap's boundaries.
type Segment struct {
	Kind  SegmentKind
	ID    uuid.UUID
	Start time.Time
	End   time.Time

	// Expanded applies to gap segments only.
	Expanded bool

	// Event and Lane apply to event segments only.
	Event models.ClampedEvent
	Lane  int
}

// Duration returns the segment's time span.
func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// IsGap reports whether the segment is an idle-time gap.
func (s Segment) IsGap() bool {
	return s.Kind == SegmentGap
}

// Collapsible reports whether a gap is long enough to render as a
// collapsed chip when unexpanded. Event segments are never collapsible.
func (s Segment) Collapsible(p LayoutParams) bool {
	return s.IsGap() && s.Duration() > p.GapThreshold
}

// Height returns the segment's render height in abstract units: the fixed
// chip height for a collapsed long gap, proportional otherwise.
func (s Segment) Height(p LayoutParams) float64 {
	if s.Collapsible(p) && !s.Expanded {
		return p.CollapsedGapHeight
	}
	return s.Duration().Minutes() * p.PxPerMinute
}

// LayoutParams are the presentation knobs the engine exposes to the
// rendering layer.
type LayoutParams struct {
	// PxPerMinute is the vertical scale in abstract units.
	PxPerMinute float64

	// GapThreshold is the duration above which a gap becomes collapsible.
	GapThreshold time.Duration

	// CollapsedGapHeight is the fixed height of a collapsed gap chip.
	CollapsedGapHeight float64

	// MaxLanes caps parallel lanes for overlapping events.
	MaxLanes int
}

// DefaultLayoutParams returns the stock presentation parameters.
func DefaultLayoutParams() LayoutParams {
	return LayoutParams{
		PxPerMinute:        1.0,
		GapThreshold:       30 * time.Minute,
		CollapsedGapHeight: 48,
		MaxLanes:           config.MaxLanes,
	}
}

func (p LayoutParams) normalized() LayoutParams {
	def := DefaultLayoutParams()
	if p.PxPerMinute <= 0 {
		p.PxPerMinute = def.PxPerMinute
	}
	if p.GapThreshold <= 0 {
		p.GapThreshold = def.GapThreshold
	}
	if p.CollapsedGapHeight <= 0 {
		p.CollapsedGapHeight = def.CollapsedGapHeight
	}
	if p.MaxLanes < 1 || p.MaxLanes > config.MaxLanes {
		p.MaxLanes = def.MaxLanes
	}
	return p
}

// DayLayout is the render-ready output for one day: a sticky all-day
// bucket plus an ordered segment sequence that tiles [Start, End).
type DayLayout struct {
	Day   time.Time
	Start time.Time
	End   time.Time

	// AllDay holds the day's all-day events, clamped to the day and
	// sorted by title. They sit outside the main segment sequence.
	AllDay []models.ClampedEvent

	// Segments covers the day from midnight to midnight.
	Segments []Segment
}

// EventSegments returns the event segments in order.
func (l DayLayout) EventSegments() []Segment {
	var out []Segment
	for _, s := range l.Segments {
		if s.Kind == SegmentEvent {
			out = append(out, s)
		}
	}
	return out
}

// Builder derives DayLayouts from raw events. It is stateless per call;
// the caller supplies the expanded-gap set each build.
type Builder struct {
	params LayoutParams
	loc    *time.Location
	logger zerolog.Logger
}

// NewBuilder creates a Builder for the given presentation parameters and
// display timezone.
func NewBuilder(params LayoutParams, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{
		params: params.normalized(),
		loc:    loc,
		logger: logging.Component("timeline"),
	}
}

// Params returns the builder's normalized layout parameters.
func (b *Builder) Params() LayoutParams {
	return b.params
}

// Location returns the builder's display timezone.
func (b *Builder) Location() *time.Location {
	return b.loc
}

// Build produces the day's layout from raw events. Identical inputs
// (including the expanded set) produce identical sequences apart from the
// freshly generated gap UUIDs. Invalid day boundaries abort the build;
// malformed events are skipped inside FilterDay.
func (b *Builder) Build(events []models.CalendarEvent, day time.Time, expanded *ExpandedGaps) (DayLayout, error) {
	dayStart, dayEnd, err := DayBounds(day, b.loc)
	if err != nil {
		return DayLayout{}, err
	}

	allDay, timed, err := FilterDay(events, day, b.loc, b.logger)
	if err != nil {
		return DayLayout{}, err
	}

	layout := DayLayout{
		Day:   dayStart,
		Start: dayStart,
		End:   dayEnd,
	}

	// All-day events pin to the full day and sort by title for a stable
	// display order.
	for _, ev := range allDay {
		ce := models.Clamp(ev, dayStart, dayEnd)
		ce.Start = dayStart
		ce.End = dayEnd
		layout.AllDay = append(layout.AllDay, ce)
	}
	sort.SliceStable(layout.AllDay, func(i, j int) bool {
		return layout.AllDay[i].Title < layout.AllDay[j].Title
	})

	// Timed events keep their true start (the filter already restricted
	// them to same-day starts); only the end is cut at midnight.
	clamped := make([]models.ClampedEvent, 0, len(timed))
	for _, ev := range timed {
		orig := ev
		ce := models.ClampedEvent{CalendarEvent: ev, Original: &orig}
		if ce.End.After(dayEnd) {
			ce.End = dayEnd
			ce.ClampedEnd = true
		}
		clamped = append(clamped, ce)
	}

	laned := AssignLanes(clamped, b.params.MaxLanes)

	cursor := dayStart
	for _, le := range laned {
		if gap := le.Event.Start.Sub(cursor); gap > minGap {
			layout.Segments = append(layout.Segments, b.newGap(cursor, le.Event.Start, expanded))
		}
		layout.Segments = append(layout.Segments, Segment{
			Kind:  SegmentEvent,
			ID:    uuid.New(),
			Start: le.Event.Start,
			End:   le.Event.End,
			Event: le.Event,
			Lane:  le.Lane,
		})
		if le.Event.End.After(cursor) {
			cursor = le.Event.End
		}
	}

	if dayEnd.Sub(cursor) > minGap {
		layout.Segments = append(layout.Segments, b.newGap(cursor, dayEnd, expanded))
	}

	return layout, nil
}

func (b *Builder) newGap(start, end time.Time, expanded *ExpandedGaps) Segment {
	return Segment{
		Kind:     SegmentGap,
		ID:       uuid.New(),
		Start:    start,
		End:      end,
		Expanded: expanded.IsExpanded(start),
	}
}
