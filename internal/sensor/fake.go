package sensor

import (
	"errors"
	"sync"
)

// FakeProbe is a test double that returns scripted readings.
type FakeProbe struct {
	mu sync.Mutex

	// Samples contains scripted values; each ReadRaw consumes the next one.
	// Once exhausted the last sample is repeated.
	Samples []float64
	next    int

	// ReadError, if set, is returned by ReadRaw.
	ReadError error

	// Calls counts ReadRaw invocations.
	Calls int
}

// NewFakeProbe creates a FakeProbe with the given samples.
func NewFakeProbe(samples ...float64) *FakeProbe {
	return &FakeProbe{Samples: samples}
}

// ReadRaw returns the next scripted sample.
func (f *FakeProbe) ReadRaw() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	if f.next < len(f.Samples) {
		v := f.Samples[f.next]
		f.next++
		return v, nil
	}
	return f.Samples[len(f.Samples)-1], nil
}

// Push appends samples to the script.
func (f *FakeProbe) Push(samples ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = append(f.Samples, samples...)
}
