package relay

import "sync"

// FakeDriver records relay writes for test assertions.
type FakeDriver struct {
	mu sync.Mutex

	// Writes contains every value written, in order.
	Writes []bool

	// Active is the last value written.
	Active bool

	// WriteError, if set, is returned by Write (the value is still recorded).
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver with the relay off.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Write records the value.
func (f *FakeDriver) Write(active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = append(f.Writes, active)
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Active = active
	return nil
}

// Close de-energizes and marks the driver closed.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Active = false
	f.Closed = true
	return nil
}

// WriteCount returns the number of Write calls.
func (f *FakeDriver) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Writes)
}

// Reset clears recorded writes.
func (f *FakeDriver) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes = nil
	f.Active = false
	f.WriteError = nil
	f.Closed = false
}
