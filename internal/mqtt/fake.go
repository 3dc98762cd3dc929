package mqtt

import (
	"context"
	"sync"

	"thermo_relay/internal/models"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Events contains all controller events that were published.
	Events []models.ControllerEvent

	// Statuses contains all published status snapshots.
	Statuses []models.StatusView

	// Payloads contains the JSON payloads that were published, in order.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish and PublishStatus.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

var _ Publisher = (*FakePublisher)(nil)

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the controller event.
func (f *FakePublisher) Publish(_ context.Context, e models.ControllerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatEventPayload(e)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, e)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishStatus records the status snapshot.
func (f *FakePublisher) PublishStatus(_ context.Context, v models.StatusView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatStatusPayload(v)
	if err != nil {
		return err
	}
	f.Statuses = append(f.Statuses, v)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// EventTypes returns the types of the recorded events, in order.
func (f *FakePublisher) EventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Events))
	for _, e := range f.Events {
		out = append(out, e.Type)
	}
	return out
}
