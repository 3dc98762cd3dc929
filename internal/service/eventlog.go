package service

import (
	"context"
	"errors"
	"fmt"

	"thermo_relay/internal/models"
	"thermo_relay/internal/repository"
)

// MaxLogLimit caps LogFilter.Limit.
const MaxLogLimit = 1000

// ErrInvalidFilter marks a log query the caller got wrong.
var ErrInvalidFilter = errors.New("invalid log filter")

var eventTypes = map[string]struct{}{
	models.EventStart:          {},
	models.EventStop:           {},
	models.EventRelayOn:        {},
	models.EventRelayOff:       {},
	models.EventShutdown:       {},
	models.EventConfigChange:   {},
	models.EventSensorError:    {},
	models.EventSensorRestored: {},
}

// EventLogService answers queries against the persisted controller events.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// List returns events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ControllerEvent, error) {
	q, err := f.query()
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.ControllerEvent{}
	}
	return events, nil
}

// query validates f and converts it to a repository query in UTC.
func (f LogFilter) query() (repository.EventQuery, error) {
	q := repository.EventQuery{
		Type:  repository.EventType(f.Type),
		Limit: f.Limit,
	}
	if !f.From.IsZero() {
		q.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		q.To = f.To.UTC()
	}

	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return q, fmt.Errorf("%w: from %s is after to %s", ErrInvalidFilter,
			q.From.Format("2006-01-02 15:04:05"), q.To.Format("2006-01-02 15:04:05"))
	}
	if _, ok := eventTypes[q.Type]; q.Type != "" && !ok {
		return q, fmt.Errorf("%w: unknown event type %q", ErrInvalidFilter, q.Type)
	}
	if q.Limit < 0 || q.Limit > MaxLogLimit {
		return q, fmt.Errorf("%w: limit must be between 0 and %d", ErrInvalidFilter, MaxLogLimit)
	}
	return q, nil
}
