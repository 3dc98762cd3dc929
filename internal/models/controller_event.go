package models

import "time"

// Controller event types.
const (
	EventStart          = "START"
	EventStop           = "STOP"
	EventRelayOn        = "RELAY_ON"
	EventRelayOff       = "RELAY_OFF"
	EventShutdown       = "SHUTDOWN"
	EventConfigChange   = "CONFIG_CHANGE"
	EventSensorError    = "SENSOR_ERROR"
	EventSensorRestored = "SENSOR_RESTORED"
)

// ControllerEvent is a single log entry.
type ControllerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | RELAY_ON | RELAY_OFF | SHUTDOWN | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
