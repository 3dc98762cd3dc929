package models

import "time"

// ControllerState is the externally visible state of the hysteresis controller.
type ControllerState string

const (
	StateIdle     ControllerState = "IDLE"      // stopped by an operator
	StateRelayOff ControllerState = "RELAY_OFF" // running, relay de-energized
	StateRelayOn  ControllerState = "RELAY_ON"  // running, relay energized
	StateShutdown ControllerState = "SHUTDOWN"  // latched after an over-temperature reading
)

// StatusView is a consistent snapshot of the controller for reporting.
type StatusView struct {
	State           ControllerState `json:"state"`
	Temperature     *float64        `json:"temperature"` // nil until the first valid reading
	RelayActive     bool            `json:"relay_active"`
	Running         bool            `json:"running"`
	SensorConnected bool            `json:"sensor_connected"`
	RelayWorking    bool            `json:"relay_working"`
	TotalReadings   uint64          `json:"total_readings"`
	Errors          uint64          `json:"errors"`
	LastError       string          `json:"last_error,omitempty"`
	LastReadingAt   *time.Time      `json:"last_reading_at,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	UptimeSeconds   int64           `json:"uptime_seconds"`
	Config          Configuration   `json:"config"`
}

// DataPoint is a single history sample. RelayActive is the relay state at
// capture time, before the tick's switching decision.
type DataPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	RelayActive bool      `json:"relay_active"`
}
