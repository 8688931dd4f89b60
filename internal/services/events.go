package services

import (
	"context"
	"log/slog"

	"smarttracker/internal/amqp"
)

// EventPublisher publishes change events. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, evt *amqp.EntryEvent) error
}

// publish is best effort: the write already succeeded, so failures are only logged.
func publish(ctx context.Context, events EventPublisher, evt *amqp.EntryEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "Failed to publish event",
			"type", evt.Type,
			"form_id", evt.FormID,
			"entry_id", evt.EntryID,
			"error", err)
	}
}
