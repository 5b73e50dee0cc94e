package notification

import (
	"context"

	"staybook/models"
)

// Publisher announces committed reservation lifecycle changes. Delivery is
// best effort: callers log a failed publish and move on.
type Publisher interface {
	Publish(ctx context.Context, event models.ReservationEvent) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.ReservationEvent) error { return nil }
func (NoopPublisher) Close() error                                           { return nil }
