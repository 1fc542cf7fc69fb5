package clock

import (
	"testing"
	"time"
)

func TestInstantSubWraps(t *testing.T) {
	a := Instant(0xFFFFFF00)
	b := a.Add(512 * time.Microsecond)

	if got := b.Sub(a); got != 512*time.Microsecond {
		t.Errorf("expected 512µs, got %v", got)
	}
	if got := a.Sub(b); got != -512*time.Microsecond {
		t.Errorf("expected -512µs, got %v", got)
	}
}

func TestClockExtendsNarrowCounter(t *testing.T) {
	counter := uint32(4000)
	c := New(12, func() uint32 { return counter })

	// 4000 -> 4095 -> wraps to 100: 196 ticks total.
	counter = 4095
	c.Tick()
	counter = 100 + 4096*7 // upper bits are masked off
	c.Tick()

	if got := c.Now(); got != 196 {
		t.Errorf("expected 196, got %d", got)
	}
}

func TestClockFullWidth(t *testing.T) {
	counter := uint32(0xFFFFFFF0)
	c := New(32, func() uint32 { return counter })
	counter = 0x10
	c.Tick()

	if got := c.Now(); got != 0x20 {
		t.Errorf("expected 32, got %d", got)
	}
}
