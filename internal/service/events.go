package service

import (
	"context"

	"thermo_relay/internal/models"
)

// EventSink receives controller events after the state change is applied.
// Delivery failures are logged and never roll back the change.
type EventSink interface {
	Publish(ctx context.Context, e models.ControllerEvent) error
}

// EventSinkFunc adapts a function, such as repository.EventRepo.Append, to EventSink.
type EventSinkFunc func(ctx context.Context, e models.ControllerEvent) error

func (f EventSinkFunc) Publish(ctx context.Context, e models.ControllerEvent) error {
	return f(ctx, e)
}

// StatusSink receives the status snapshot after every tick.
type StatusSink interface {
	PublishStatus(ctx context.Context, v models.StatusView) error
}
