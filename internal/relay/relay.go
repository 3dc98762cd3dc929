// Package relay drives the relay output with hardware abstraction.
// The GPIO implementation uses the Linux GPIO character device; the fake
// records writes for tests.
package relay

// Driver switches the relay. Writes are idempotent: writing the current
// state again is harmless.
type Driver interface {
	// Write energizes (true) or de-energizes (false) the relay coil.
	Write(active bool) error

	// Close de-energizes the relay and releases the output.
	Close() error
}

// Defaults for a Raspberry Pi relay hat.
const (
	DefaultChip = "gpiochip0"
	DefaultLine = 17
)
