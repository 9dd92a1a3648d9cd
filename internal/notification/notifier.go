package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/study-tracker/internal/core/events"
)

type Queue interface {
	Enqueue(msg Message) bool
}

// Notifier turns account events into queued emails.
type Notifier struct {
	queue     Queue
	templates *Templates
	resetLink func(token string) string
	logger    *slog.Logger
}

func NewNotifier(queue Queue, templates *Templates, resetLink func(token string) string, logger *slog.Logger) *Notifier {
	return &Notifier{
		queue:     queue,
		templates: templates,
		resetLink: resetLink,
		logger:    logger,
	}
}

func (n *Notifier) HandleUserSignedUp(_ context.Context, event events.Event) error {
	e, ok := event.(*events.UserSignedUpEvent)
	if !ok {
		return fmt.Errorf("expected UserSignedUpEvent, got %T", event)
	}
	// auto-approved administrators skip the pending-approval welcome
	if e.Status != "pending" {
		return nil
	}

	msg, err := n.templates.Welcome(e.Email, e.Name)
	if err != nil {
		return err
	}
	n.enqueue(msg, e.EventID())
	return nil
}

func (n *Notifier) HandleApprovalApproved(_ context.Context, event events.Event) error {
	e, ok := event.(*events.ApprovalDecidedEvent)
	if !ok {
		return fmt.Errorf("expected ApprovalDecidedEvent, got %T", event)
	}

	msg, err := n.templates.Approval(e.Email, e.Name)
	if err != nil {
		return err
	}
	n.enqueue(msg, e.EventID())
	return nil
}

func (n *Notifier) HandlePasswordResetRequested(_ context.Context, event events.Event) error {
	e, ok := event.(*events.PasswordResetRequestedEvent)
	if !ok {
		return fmt.Errorf("expected PasswordResetRequestedEvent, got %T", event)
	}

	msg, err := n.templates.Reset(e.Email, e.Name, n.resetLink(e.Token))
	if err != nil {
		return err
	}
	n.enqueue(msg, e.EventID())
	return nil
}

func (n *Notifier) enqueue(msg Message, eventID string) {
	if !n.queue.Enqueue(msg) {
		n.logger.Warn("notification not queued", "kind", msg.Kind, "event_id", eventID)
	}
}

func (n *Notifier) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeUserSignedUp, n.HandleUserSignedUp)
	eventBus.Subscribe(events.EventTypeApprovalApproved, n.HandleApprovalApproved)
	eventBus.Subscribe(events.EventTypePasswordResetRequested, n.HandlePasswordResetRequested)

	n.logger.Info("notification event handlers registered",
		"handlers", []string{
			events.EventTypeUserSignedUp,
			events.EventTypeApprovalApproved,
			events.EventTypePasswordResetRequested,
		})
}
