package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a fact about an account that other parts of the system react to.
type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
}

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func newBase(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

type Handler func(ctx context.Context, event Event) error

// Publisher is what services depend on; the bus is the only production implementation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventBus fans events out to subscribers on their own goroutines.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	inflight sync.WaitGroup
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("event handler registered",
		"event_type", eventType,
		"total_handlers", len(eb.handlers[eventType]))
}

// Publish never reports handler failures to the caller; they are logged.
// Handlers run on a context detached from the caller's cancellation, since the request usually ends first.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.EventType()]...)
	eb.mu.RUnlock()

	lg := eb.logger.With("event_type", event.EventType(), "event_id", event.EventID())
	if len(handlers) == 0 {
		lg.Debug("no handlers for event")
		return nil
	}
	lg.Info("publishing event", "handlers_count", len(handlers))

	detached := context.WithoutCancel(ctx)
	eb.inflight.Add(len(handlers))
	for _, h := range handlers {
		go eb.run(detached, lg, h, event)
	}
	return nil
}

func (eb *EventBus) run(ctx context.Context, lg *slog.Logger, h Handler, event Event) {
	defer eb.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			lg.Error("event handler panicked", "panic", r)
		}
	}()

	if err := h(ctx, event); err != nil {
		lg.Error("event handler failed", "error", err)
	}
}

// Wait blocks until every dispatched handler has returned.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}
