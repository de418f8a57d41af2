// Package schedule wires the layout engine to the event store: it owns
// the rebuild triggers, commits reposition intents, and notifies
// observers of schedule changes.
package schedule

import (
	"sync"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/models"
)

// NotificationType categorizes schedule notifications.
type NotificationType string

const (
	NotificationDayChanged          NotificationType = "day.changed"
	NotificationEventsChanged       NotificationType = "events.changed"
	NotificationRepositionCommitted NotificationType = "reposition.committed"
	NotificationRepositionFailed    NotificationType = "reposition.failed"
)

// Notification is a fire-and-forget message to schedule observers.
type Notification struct {
	Type    NotificationType
	Day     time.Time
	EventID string
	Source  models.EventSource
	Intent  *models.RepositionIntent
	Err     string
}

// Handler is a callback invoked when a notification matches a
// subscription.
type Handler func(*Notification)

// Filter defines criteria for matching notifications.
type Filter struct {
	// Types filters by notification type (nil = all types).
	Types []NotificationType

	// EventID filters to a specific event (empty = all).
	EventID string
}

// Matches returns true if the notification matches the filter criteria.
func (f *Filter) Matches(n *Notification) bool {
	if n == nil {
		return false
	}

	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if n.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.EventID != "" && n.EventID != f.EventID {
		return false
	}

	return true
}

// subscription represents an active subscription.
type subscription struct {
	id      string
	filter  Filter
	handler Handler
}

// Publisher delivers schedule notifications to subscribers in-process.
type Publisher struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{
		subscriptions: make(map[string]*subscription),
	}
}

// Publish sends a notification to all matching subscribers. Handlers are
// invoked outside the lock to avoid deadlocks.
func (p *Publisher) Publish(n *Notification) {
	if n == nil {
		return
	}

	p.mu.RLock()
	var handlers []Handler
	for _, sub := range p.subscriptions {
		if sub.filter.Matches(n) {
			handlers = append(handlers, sub.handler)
		}
	}
	p.mu.RUnlock()

	for _, handler := range handlers {
		handler(n)
	}
}

// Subscribe registers a handler to receive matching notifications.
func (p *Publisher) Subscribe(id string, filter Filter, handler Handler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}

	p.subscriptions[id] = &subscription{
		id:      id,
		filter:  filter,
		handler: handler,
	}
	return nil
}

// Unsubscribe removes a subscription by ID.
func (p *Publisher) Unsubscribe(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}
	delete(p.subscriptions, id)
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscriptions)
}

// Close removes all subscriptions.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions = make(map[string]*subscription)
}

// Errors for publisher operations.
var (
	ErrInvalidSubscriptionID = &PublisherError{Message: "subscription ID is required"}
	ErrNilHandler            = &PublisherError{Message: "handler cannot be nil"}
	ErrSubscriptionExists    = &PublisherError{Message: "subscription with this ID already exists"}
	ErrSubscriptionNotFound  = &PublisherError{Message: "subscription not found"}
)

// PublisherError represents an error from publisher operations.
type PublisherError struct {
	Message string
}

func (e *PublisherError) Error() string {
	return e.Message
}
