// Package history keeps a fixed-capacity ring of controller samples.
package history

import "thermo_relay/internal/models"

// DefaultCapacity is the number of samples kept when none is configured.
const DefaultCapacity = 100

// Ring is a fixed-capacity FIFO of data points; the oldest sample is
// overwritten once full. Not safe for concurrent use; callers synchronize.
type Ring struct {
	buf   []models.DataPoint
	head  int // next write position
	count int
}

// NewRing creates a ring holding up to capacity points.
// A non-positive capacity falls back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{buf: make([]models.DataPoint, capacity)}
}

// Record appends p, evicting the oldest point when the ring is full.
func (r *Ring) Record(p models.DataPoint) {
	r.buf[r.head] = p
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Snapshot returns a copy of the stored points, oldest first.
func (r *Ring) Snapshot() []models.DataPoint {
	out := make([]models.DataPoint, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of stored points.
func (r *Ring) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *Ring) Cap() int { return len(r.buf) }
