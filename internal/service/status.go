package service

import (
	"context"
	"fmt"
	"time"

	"thermo_relay/internal/models"
)

// counters is the controller's health bookkeeping. Counts only grow; they are
// reset when the process restarts.
type counters struct {
	startedAt       time.Time
	totalReadings   uint64
	errors          uint64
	sensorConnected bool
	sensorFailing   bool // a SENSOR_ERROR was reported and not yet cleared
	relayWorking    bool
	lastError       string
}

func (c *counters) reset(now time.Time) {
	*c = counters{startedAt: now, relayWorking: true}
}

// sensorOK counts a valid reading and reports whether it ended a failure streak.
func (c *counters) sensorOK() (restored bool) {
	c.totalReadings++
	c.sensorConnected = true
	restored = c.sensorFailing
	c.sensorFailing = false
	return restored
}

// sensorFailed counts a failed read and reports whether it started a failure streak.
func (c *counters) sensorFailed(err error) (first bool) {
	c.errors++
	c.sensorConnected = false
	c.lastError = err.Error()
	first = !c.sensorFailing
	c.sensorFailing = true
	return first
}

func (c *counters) relayFailed(err error) {
	c.relayWorking = false
	c.lastError = fmt.Sprintf("relay: %v", err)
}

// GetStatus returns a consistent snapshot of state, counters and configuration.
func (s *ControllerService) GetStatus(_ context.Context) models.StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v := models.StatusView{
		State:           s.stateLocked(),
		RelayActive:     s.relayActive,
		Running:         s.running,
		SensorConnected: s.counters.sensorConnected,
		RelayWorking:    s.counters.relayWorking,
		TotalReadings:   s.counters.totalReadings,
		Errors:          s.counters.errors,
		LastError:       s.counters.lastError,
		StartedAt:       s.counters.startedAt,
		UptimeSeconds:   int64(now.Sub(s.counters.startedAt) / time.Second),
		Config:          s.cfg,
	}
	if s.hasTemp {
		t, at := s.temp, s.lastReadingAt
		v.Temperature = &t
		v.LastReadingAt = &at
	}
	return v
}
