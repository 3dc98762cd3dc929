// Package sensor reads the temperature probe and classifies invalid readings.
// Probes do the raw bus transaction; Reader applies the disconnected sentinel
// and range checks on top of them.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Probe performs one blocking conversion on the sensor bus and returns the raw
// value in °C. The transaction cannot be aborted once started.
type Probe interface {
	ReadRaw() (float64, error)
}

// Reading classification errors.
var (
	ErrDisconnected = errors.New("sensor disconnected")
	ErrOutOfRange   = errors.New("sensor reading out of range")
)

// DS18B20 characteristics.
const (
	DisconnectedC = -127.0 // reserved "device disconnected" value
	PhysicalMinC  = -55.0
	PhysicalMaxC  = 125.0
)

// Options tunes the Reader checks. Zero values take the DS18B20 defaults.
type Options struct {
	DisconnectedValue float64
	PhysicalMin       float64
	PhysicalMax       float64
}

// Reader wraps a Probe with sentinel detection and plausibility checks.
type Reader struct {
	probe        Probe
	disconnected float64
	physMin      float64
	physMax      float64
}

// NewReader creates a Reader over p.
func NewReader(p Probe, opts Options) *Reader {
	r := &Reader{
		probe:        p,
		disconnected: opts.DisconnectedValue,
		physMin:      opts.PhysicalMin,
		physMax:      opts.PhysicalMax,
	}
	if r.disconnected == 0 {
		r.disconnected = DisconnectedC
	}
	if r.physMin == 0 && r.physMax == 0 {
		r.physMin, r.physMax = PhysicalMinC, PhysicalMaxC
	}
	return r
}

type rawResult struct {
	value float64
	err   error
}

// ReadTemperature triggers a conversion and returns the reading in °C.
// It fails with ErrDisconnected when the probe errors, reports the sentinel or
// ctx expires first, and with ErrOutOfRange when the value is outside the
// probe's physical range or below minTemp. Values at or above the safety
// maximum are returned as valid so the caller can act on them.
func (r *Reader) ReadTemperature(ctx context.Context, minTemp float64) (float64, error) {
	done := make(chan rawResult, 1)
	go func() {
		v, err := r.probe.ReadRaw()
		done <- rawResult{value: v, err: err}
	}()

	var res rawResult
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrDisconnected, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDisconnected, res.err)
	}
	if res.value == r.disconnected {
		return 0, ErrDisconnected
	}
	if math.IsNaN(res.value) || math.IsInf(res.value, 0) {
		return 0, fmt.Errorf("%w: non-finite reading %v", ErrOutOfRange, res.value)
	}
	if res.value < r.physMin || res.value > r.physMax {
		return 0, fmt.Errorf("%w: %.2f°C outside sensor range [%.1f, %.1f]", ErrOutOfRange, res.value, r.physMin, r.physMax)
	}
	if res.value < minTemp {
		return 0, fmt.Errorf("%w: %.2f°C below minimum %.1f°C", ErrOutOfRange, res.value, minTemp)
	}
	return res.value, nil
}
