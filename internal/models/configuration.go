package models

// Configuration holds the controller thresholds and timing.
// TempLow activates the relay, TempHigh deactivates it; MinTemp and MaxTemp
// are the safety bounds.
type Configuration struct {
	TempLow       float64 `json:"temp_low"`       // °C
	TempHigh      float64 `json:"temp_high"`      // °C
	CheckInterval int     `json:"check_interval"` // seconds
	MinTemp       float64 `json:"min_temp"`       // °C
	MaxTemp       float64 `json:"max_temp"`       // °C
}

// StoredConfig is the persisted subset of Configuration. Safety bounds come
// from the process configuration and are never written by the controller.
type StoredConfig struct {
	TempLow       float64 `json:"temp_low"`
	TempHigh      float64 `json:"temp_high"`
	CheckInterval int     `json:"check_interval"`
}
