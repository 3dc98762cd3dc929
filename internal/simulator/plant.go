// Package simulator provides a thermal model of a heated vessel that stands
// in for both the temperature probe and the relay during development.
package simulator

import (
	"sync"
	"time"
)

// ----------- Simulation defaults -----------
const (
	AmbientC          = 18.0 // ambient temperature °C
	HeatCPerSec       = 0.25 // °C per second while the relay is energized
	CoolCPerSec       = 0.05 // °C per second drift toward ambient otherwise
	DefaultConversion = 750 * time.Millisecond
)

// Options configures a Plant. Zero values take the defaults above.
type Options struct {
	AmbientC       float64
	StartC         float64
	HeatCPerSec    float64
	CoolCPerSec    float64
	ConversionTime time.Duration // simulated blocking read; 0 disables

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Plant is a simulated heater + vessel. It implements sensor.Probe (ReadRaw)
// and relay.Driver (Write, Close).
type Plant struct {
	mu sync.Mutex

	ambient    float64
	heatRate   float64
	coolRate   float64
	conversion time.Duration
	now        func() time.Time

	tempC     float64
	heating   bool
	updatedAt time.Time
}

// NewPlant returns a plant at StartC (ambient when unset).
func NewPlant(opts Options) *Plant {
	p := &Plant{
		ambient:    opts.AmbientC,
		heatRate:   opts.HeatCPerSec,
		coolRate:   opts.CoolCPerSec,
		conversion: opts.ConversionTime,
		now:        opts.Now,
		tempC:      opts.StartC,
	}
	if p.ambient == 0 {
		p.ambient = AmbientC
	}
	if p.heatRate == 0 {
		p.heatRate = HeatCPerSec
	}
	if p.coolRate == 0 {
		p.coolRate = CoolCPerSec
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.tempC == 0 {
		p.tempC = p.ambient
	}
	p.updatedAt = p.now()
	return p
}

// ReadRaw advances the model to now and returns the vessel temperature.
func (p *Plant) ReadRaw() (float64, error) {
	if p.conversion > 0 {
		time.Sleep(p.conversion)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	return p.tempC, nil
}

// Write switches the heater; the model is advanced first so the elapsed
// time is attributed to the previous state.
func (p *Plant) Write(active bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	p.heating = active
	return nil
}

// Close switches the heater off.
func (p *Plant) Close() error {
	return p.Write(false)
}

// Heating reports whether the simulated heater is energized.
func (p *Plant) Heating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heating
}

// advance applies the elapsed time since the last update. Caller holds mu.
func (p *Plant) advance() {
	now := p.now()
	elapsed := now.Sub(p.updatedAt).Seconds()
	if elapsed <= 0 {
		return
	}
	if p.heating {
		p.tempC += p.heatRate * elapsed
	} else {
		p.driftToAmbient(elapsed)
	}
	p.updatedAt = now
}

// driftToAmbient moves the temperature toward ambient without overshooting.
func (p *Plant) driftToAmbient(elapsed float64) {
	switch {
	case p.tempC > p.ambient:
		p.tempC = maxFloat(p.tempC-p.coolRate*elapsed, p.ambient)
	case p.tempC < p.ambient:
		p.tempC = minFloat(p.tempC+p.coolRate*elapsed, p.ambient)
	}
}

// helpers
func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}
