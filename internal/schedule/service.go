package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/drag"
	"github.com/rasheuristics/CalAI-sub003/internal/logging"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
	"github.com/rasheuristics/CalAI-sub003/internal/timeline"
	"github.com/rs/zerolog"
)

// Store is the persistence surface the service consumes. The engine never
// mutates source events directly; repositions go through Reposition and
// the updated events flow back on the next rebuild.
type Store interface {
	EventsForRange(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
	Reposition(ctx context.Context, eventID string, newStart, newEnd time.Time) error
}

// CommitResult reports the outcome of an asynchronous reposition commit.
type CommitResult struct {
	Intent models.RepositionIntent
	Err    error
}

// Service owns one day-view's layout lifecycle. It is constructed
// explicitly and passed to whoever needs it; rebuild triggers
// (day change, event-set change, gap toggle) are serialized per instance.
type Service struct {
	store     Store
	builder   *timeline.Builder
	expanded  *timeline.ExpandedGaps
	drags     *drag.Engine
	publisher *Publisher
	logger    zerolog.Logger

	mu     sync.Mutex
	day    time.Time
	layout timeline.DayLayout
}

// NewService creates a service centered on day and builds the initial
// layout.
func NewService(ctx context.Context, store Store, builder *timeline.Builder, drags *drag.Engine, day time.Time) (*Service, error) {
	s := &Service{
		store:     store,
		builder:   builder,
		expanded:  timeline.NewExpandedGaps(),
		drags:     drags,
		publisher: NewPublisher(),
		logger:    logging.Component("schedule"),
		day:       timeline.StartOfDay(day, builder.Location()),
	}
	s.expanded.SetDay(s.day, builder.Location())
	if err := s.rebuildLocked(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Builder exposes the layout builder (for its params and timezone).
func (s *Service) Builder() *timeline.Builder {
	return s.builder
}

// Publisher exposes the notification stream for observers.
func (s *Service) Publisher() *Publisher {
	return s.publisher
}

// ExpandedGaps exposes the expansion set, e.g. for a carousel sharing
// this day view's state.
func (s *Service) ExpandedGaps() *timeline.ExpandedGaps {
	return s.expanded
}

// Day returns the viewed day.
func (s *Service) Day() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// Layout returns the current day layout.
func (s *Service) Layout() timeline.DayLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Events fetches the raw events overlapping a day; it also serves as the
// carousel's EventsFunc.
func (s *Service) Events(ctx context.Context, day time.Time) ([]models.CalendarEvent, error) {
	dayStart, dayEnd, err := timeline.DayBounds(day, s.builder.Location())
	if err != nil {
		return nil, err
	}
	return s.store.EventsForRange(ctx, dayStart, dayEnd)
}

// OnDayChanged recenters the view on a new day: expansion state clears
// and the layout rebuilds synchronously.
func (s *Service) OnDayChanged(ctx context.Context, day time.Time) error {
	s.mu.Lock()
	s.day = timeline.StartOfDay(day, s.builder.Location())
	s.expanded.SetDay(s.day, s.builder.Location())
	err := s.rebuildLocked(ctx)
	viewed := s.day
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.publisher.Publish(&Notification{Type: NotificationDayChanged, Day: viewed})
	return nil
}

// OnEventsChanged rebuilds the layout after the underlying event set
// changed (sync completed, import finished, reposition committed).
// Expansion state survives because the day did not change.
func (s *Service) OnEventsChanged(ctx context.Context) error {
	s.mu.Lock()
	err := s.rebuildLocked(ctx)
	viewed := s.day
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.publisher.Publish(&Notification{Type: NotificationEventsChanged, Day: viewed})
	return nil
}

// ToggleGap flips a gap's expansion state and rebuilds.
func (s *Service) ToggleGap(ctx context.Context, gapStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expanded.Toggle(gapStart)
	return s.rebuildLocked(ctx)
}

// CommitReposition applies a reposition intent to the store without
// blocking the caller. The returned channel delivers exactly one result:
// on success the layout is rebuilt from the committed data; on failure
// the event's parked offset is cleared so the optimistic preview reverts.
func (s *Service) CommitReposition(ctx context.Context, intent models.RepositionIntent) <-chan CommitResult {
	ch := make(chan CommitResult, 1)

	go func() {
		err := s.store.Reposition(ctx, intent.EventID, intent.NewStart, intent.NewEnd)
		if err != nil {
			s.logger.Warn().Err(err).Str("event_id", intent.EventID).Msg("reposition commit failed")
			if s.drags != nil {
				s.drags.ClearParked(intent.EventID)
			}
			s.publisher.Publish(&Notification{
				Type:    NotificationRepositionFailed,
				EventID: intent.EventID,
				Source:  intent.Source,
				Intent:  &intent,
				Err:     err.Error(),
			})
			ch <- CommitResult{Intent: intent, Err: err}
			return
		}

		s.logger.Info().
			Str("event_id", intent.EventID).
			Time("new_start", intent.NewStart).
			Time("new_end", intent.NewEnd).
			Msg("reposition committed")

		if rerr := s.OnEventsChanged(ctx); rerr != nil {
			s.logger.Error().Err(rerr).Msg("rebuild after reposition failed")
		}
		s.publisher.Publish(&Notification{
			Type:    NotificationRepositionCommitted,
			EventID: intent.EventID,
			Source:  intent.Source,
			Intent:  &intent,
		})
		ch <- CommitResult{Intent: intent}
	}()

	return ch
}

// rebuildLocked rebuilds the layout. Callers hold s.mu.
func (s *Service) rebuildLocked(ctx context.Context) error {
	dayStart, dayEnd, err := timeline.DayBounds(s.day, s.builder.Location())
	if err != nil {
		return err
	}
	events, err := s.store.EventsForRange(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}
	layout, err := s.builder.Build(events, s.day, s.expanded)
	if err != nil {
		return err
	}
	s.layout = layout
	return nil
}
