package timeline

import (
	"sort"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/config"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
)

// LaneEvent pairs a day-clamped event with its assigned lane. Lane is a
// layout attribute recomputed on every build, never persisted.
type LaneEvent struct {
	Event models.ClampedEvent
	Lane  int
}

// AssignLanes places each event in the lowest-numbered lane whose previous
// occupant has already ended (greedy interval partitioning). Events are
// processed in ascending start order, ties broken by original order.
//
// Lane indexes are capped at maxLanes-1: events that would need a further
// lane share the last one and overlap visually. Internally the scan keeps
// the true lane end times so the cap never corrupts placement of later
// events.
func AssignLanes(events []models.ClampedEvent, maxLanes int) []LaneEvent {
	if maxLanes < 1 || maxLanes > config.MaxLanes {
		maxLanes = config.MaxLanes
	}
	if len(events) == 0 {
		return nil
	}

	sorted := make([]models.ClampedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var laneEnds []time.Time
	out := make([]LaneEvent, 0, len(sorted))

	for _, ev := range sorted {
		lane := -1
		for i, end := range laneEnds {
			if !end.After(ev.Start) {
				lane = i
				break
			}
		}
		if lane == -1 {
			laneEnds = append(laneEnds, ev.End)
			lane = len(laneEnds) - 1
		} else {
			laneEnds[lane] = ev.End
		}

		display := lane
		if display > maxLanes-1 {
			display = maxLanes - 1
		}
		out = append(out, LaneEvent{Event: ev, Lane: display})
	}

	return out
}
