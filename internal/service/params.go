package service

import "time"

// ConfigParams is an operator configuration update. Safety bounds are not
// editable at runtime.
type ConfigParams struct {
	TempLow       float64
	TempHigh      float64
	CheckInterval int // seconds
}

// Action is an operator control command.
type Action string

const (
	ActionStart    Action = "start"
	ActionStop     Action = "stop"
	ActionRelayOn  Action = "relay_on"
	ActionRelayOff Action = "relay_off"
)

// LogFilter selects event log entries by time range and type.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "START", "STOP", "RELAY_ON", "RELAY_OFF", "SHUTDOWN", ...
	Limit int       // newest N matches; 0 means all
}
