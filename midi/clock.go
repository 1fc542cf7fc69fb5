package midi

import (
	"sync"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"

	"gridseq/debug"
)

// MIDI realtime status bytes.
const (
	timingClock = 0xF8
	start       = 0xFA
	cont        = 0xFB
	stop        = 0xFC
)

// ClocksPerPulse is the MIDI clocks per 16th note at 24 PPQN.
const ClocksPerPulse = 6

// Pulser receives clock and reset pulses.
type Pulser interface {
	PulseClock()
	PulseReset()
}

// ClockListener follows an external MIDI clock: Start pulses reset, then
// every sixth timing clock pulses the clock line while running.
type ClockListener struct {
	out Pulser

	mu      sync.Mutex
	running bool
	clocks  int
	stopFn  func()
	port    string
}

// NewClockListener drives out.
func NewClockListener(out Pulser) *ClockListener {
	return &ClockListener{out: out}
}

// Open listens on the first input port whose name contains name.
func (c *ClockListener) Open(name string) error {
	in, err := FindInPort(name)
	if err != nil {
		return err
	}
	stopFn, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		if len(msg) > 0 {
			c.Handle(msg[0])
		}
	}, gomidi.UseTimeCode())
	if err != nil {
		return errors.Wrapf(err, "listen to %s", in.String())
	}

	c.mu.Lock()
	c.stopFn, c.port = stopFn, in.String()
	c.mu.Unlock()
	debug.Log("midi-clock", "listening on %s", in.String())
	return nil
}

// Close stops listening.
func (c *ClockListener) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopFn != nil {
		c.stopFn()
		c.stopFn = nil
		debug.Log("midi-clock", "closed %s", c.port)
	}
}

// Running reports whether a Start or Continue was seen since the last Stop.
func (c *ClockListener) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Handle processes one realtime status byte.
func (c *ClockListener) Handle(status byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch status {
	case start:
		c.running = true
		c.clocks = 0
		c.out.PulseReset()
		debug.Log("midi-clock", "start")
	case cont:
		c.running = true
		debug.Log("midi-clock", "continue")
	case stop:
		c.running = false
		debug.Log("midi-clock", "stop")
	case timingClock:
		if !c.running {
			return
		}
		if c.clocks%ClocksPerPulse == 0 {
			c.out.PulseClock()
		}
		c.clocks++
	}
}
