package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rasheuristics/CalAI-sub003/internal/models"
)

// Event repository errors.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// EventRepository handles calendar event persistence.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event. A missing ID is generated.
func (r *EventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event == nil {
		return ErrInvalidEvent
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	*event = event.Normalized()
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, source, title, location, start_at, end_at, all_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		string(event.Source),
		event.Title,
		event.Location,
		event.Start.UTC().Format(time.RFC3339),
		event.End.UTC().Format(time.RFC3339),
		boolToInt(event.AllDay),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID.
func (r *EventRepository) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source, title, location, start_at, end_at, all_day
		FROM events WHERE id = ?
	`, id)
	return r.scanEvent(row)
}

// Update rewrites an event's mutable fields.
func (r *EventRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	if event == nil || event.ID == "" {
		return ErrInvalidEvent
	}
	*event = event.Normalized()

	result, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, location = ?, start_at = ?, end_at = ?, all_day = ?, source = ?, updated_at = ?
		WHERE id = ?
	`,
		event.Title,
		event.Location,
		event.Start.UTC().Format(time.RFC3339),
		event.End.UTC().Format(time.RFC3339),
		boolToInt(event.AllDay),
		string(event.Source),
		time.Now().UTC().Format(time.RFC3339),
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes an event by ID.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireRowAffected(result)
}

// Reposition moves an event to a new time span. This is the
// commit_reposition surface the drag engine's intents land on.
func (r *EventRepository) Reposition(ctx context.Context, eventID string, newStart, newEnd time.Time) error {
	if eventID == "" {
		return ErrInvalidEvent
	}
	if newEnd.Before(newStart) {
		return fmt.Errorf("%w: end before start", ErrInvalidEvent)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE events SET start_at = ?, end_at = ?, updated_at = ? WHERE id = ?
	`,
		newStart.UTC().Format(time.RFC3339),
		newEnd.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to reposition event: %w", err)
	}
	return requireRowAffected(result)
}

// EventsForRange returns events whose span overlaps [start, end),
// ordered by start time. The layout engine applies its own precise
// day-membership rules on top.
func (r *EventRepository) EventsForRange(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, title, location, start_at, end_at, all_day
		FROM events
		WHERE start_at < ? AND end_at >= ?
		ORDER BY start_at, id
	`,
		end.UTC().Format(time.RFC3339),
		start.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		event, err := r.scanEventFromRows(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// EventsForDay returns events overlapping the given day in loc.
func (r *EventRepository) EventsForDay(ctx context.Context, day time.Time, loc *time.Location) ([]models.CalendarEvent, error) {
	if loc == nil {
		loc = time.Local
	}
	local := day.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return r.EventsForRange(ctx, dayStart, dayStart.AddDate(0, 0, 1))
}

// Count returns the total number of stored events.
func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EventRepository) scanEvent(row *sql.Row) (*models.CalendarEvent, error) {
	event, err := scanEventRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) scanEventFromRows(rows *sql.Rows) (*models.CalendarEvent, error) {
	return scanEventRow(rows)
}

func scanEventRow(s rowScanner) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	var source, startAt, endAt string
	var allDay int

	if err := s.Scan(&event.ID, &source, &event.Title, &event.Location, &startAt, &endAt, &allDay); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Source = models.EventSource(source)
	event.AllDay = allDay != 0

	start, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event end: %w", err)
	}
	event.Start = start
	event.End = end

	return &event, nil
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
