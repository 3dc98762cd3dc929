//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumerName = "thermo-relay"

// GPIODriver drives a relay through a GPIO character-device line.
type GPIODriver struct {
	line *gpiocdev.Line
}

// NewGPIODriver requests offset on chip as an output, initially inactive.
// With activeLow the line is driven low to energize the relay, matching
// the common opto-isolated relay boards.
func NewGPIODriver(chip string, offset int, activeLow bool) (*GPIODriver, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer(consumerName),
		gpiocdev.AsOutput(0),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request relay line %s:%d: %w", chip, offset, err)
	}
	return &GPIODriver{line: line}, nil
}

// Write sets the logical line value; polarity is handled by the kernel.
func (d *GPIODriver) Write(active bool) error {
	v := 0
	if active {
		v = 1
	}
	if err := d.line.SetValue(v); err != nil {
		return fmt.Errorf("set relay line: %w", err)
	}
	return nil
}

// Close drives the relay inactive, returns the line to input (the boot
// default) and releases it.
func (d *GPIODriver) Close() error {
	if d.line == nil {
		return nil
	}
	var errs []error
	if err := d.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("deactivate relay: %w", err))
	}
	if err := d.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure relay line: %w", err))
	}
	if err := d.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close relay line: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
