package clock

import (
	"time"
)

// Resolution is the tick length of an Instant.
const Resolution = time.Microsecond

// Instant is a wrapping microsecond timestamp.
//
// Differences between two instants are only meaningful when they are less
// than half the counter period apart (about 35 minutes).
type Instant uint32

// Sub returns the duration t-u, correct across wrap-around.
func (t Instant) Sub(u Instant) time.Duration {
	return time.Duration(int32(t-u)) * Resolution
}

// Add returns t shifted by d.
func (t Instant) Add(d time.Duration) Instant {
	return t + Instant(d/Resolution)
}

// Source samples a free-running hardware counter.
type Source func() uint32

// Clock extends an N-bit counter into a 32-bit Instant.
// Tick must be called at least once per counter period or time is lost.
type Clock struct {
	mask   uint32
	sample Source
	last   uint32
	now    Instant
}

// New creates a clock over a counter that is bits wide (1-32).
func New(bits uint, sample Source) *Clock {
	if bits == 0 || bits > 32 {
		bits = 32
	}
	mask := uint32(1<<bits - 1)
	return &Clock{
		mask:   mask,
		sample: sample,
		last:   sample() & mask,
	}
}

// Tick samples the counter and advances the clock.
func (c *Clock) Tick() {
	v := c.sample() & c.mask
	c.now += Instant((v - c.last) & c.mask)
	c.last = v
}

// Now is the instant of the last Tick.
func (c *Clock) Now() Instant {
	return c.now
}

// System returns a Source counting microseconds since it was created.
func System() Source {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start) / Resolution)
	}
}
