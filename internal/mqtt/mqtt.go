// Package mqtt publishes controller events and status snapshots to an MQTT
// broker, with a fake publisher for tests.
package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"thermo_relay/internal/models"
)

// Availability payloads on the retained availability topic.
const (
	Online  = "online"
	Offline = "offline"
)

// Publisher publishes controller output to MQTT.
// It satisfies service.EventSink and service.StatusSink.
type Publisher interface {
	// Publish sends a controller event. Errors must not stop the controller.
	Publish(ctx context.Context, e models.ControllerEvent) error

	// PublishStatus sends the retained status snapshot.
	PublishStatus(ctx context.Context, v models.StatusView) error

	// Close marks the device offline and disconnects.
	Close() error
}

// Topics are the topic names under one prefix.
type Topics struct {
	Events       string
	Status       string
	Availability string
}

// NewTopics derives the topics for prefix, e.g. "home/boiler" gives
// "home/boiler/events".
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	return Topics{
		Events:       prefix + "/events",
		Status:       prefix + "/status",
		Availability: prefix + "/availability",
	}
}

// EventPayload is the message published for each controller event.
type EventPayload struct {
	Event EventBody `json:"event"`
}

type EventBody struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Metadata    any    `json:"metadata,omitempty"`
}

// FormatEventPayload creates the JSON payload for a controller event.
func FormatEventPayload(e models.ControllerEvent) ([]byte, error) {
	return json.Marshal(EventPayload{
		Event: EventBody{
			ID:          e.EventID,
			Timestamp:   e.OccurredAt.UTC().Format(time.RFC3339),
			Type:        e.Type,
			Description: e.Description,
			Metadata:    e.Metadata,
		},
	})
}

// StatusPayload is the retained status snapshot.
type StatusPayload struct {
	Status models.StatusView `json:"status"`
}

// FormatStatusPayload creates the JSON payload for a status snapshot.
func FormatStatusPayload(v models.StatusView) ([]byte, error) {
	return json.Marshal(StatusPayload{Status: v})
}
