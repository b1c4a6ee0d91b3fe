package service

import (
	"context"

	"github.com/ardiansyahnr/event-ticketing/internal/queue"
)

// Notifier sends a templated message to a user. Implementations are
// best effort; the transaction engine logs a failed Notify and carries
// on, it never rolls a state change back because of one.
type Notifier interface {
	Notify(ctx context.Context, event queue.NotificationEvent) error
}

// QueueNotifier publishes notification events to the message broker.
// The actual email rendering and delivery happens in the queue
// consumer, decoupled from the request path.
type QueueNotifier struct{}

func (QueueNotifier) Notify(ctx context.Context, event queue.NotificationEvent) error {
	return queue.PublishNotification(ctx, event)
}
