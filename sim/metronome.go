package sim

import (
	"context"
	"sync"
	"time"

	"gridseq/debug"
)

// Pulser receives clock and reset pulses.
type Pulser interface {
	PulseClock()
	PulseReset()
}

// PulsesPerBeat is one pulse per 16th note.
const PulsesPerBeat = 4

// Metronome is the internal clock: it pulses a Pulser at a tempo.
type Metronome struct {
	out Pulser

	mu     sync.Mutex
	tempo  int
	paused bool
	pulses uint64

	wake chan struct{}
}

// NewMetronome pulses out at bpm.
func NewMetronome(out Pulser, bpm int) *Metronome {
	m := &Metronome{out: out, wake: make(chan struct{}, 1)}
	m.SetTempo(bpm)
	return m
}

// SetTempo sets the BPM, clamped to 20-300.
func (m *Metronome) SetTempo(bpm int) {
	m.mu.Lock()
	if bpm < 20 {
		bpm = 20
	}
	if bpm > 300 {
		bpm = 300
	}
	m.tempo = bpm
	m.mu.Unlock()
	m.interrupt()
}

// Tempo is the BPM.
func (m *Metronome) Tempo() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

// Interval is the time between pulses.
func (m *Metronome) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return interval(m.tempo)
}

func interval(bpm int) time.Duration {
	return time.Minute / time.Duration(bpm*PulsesPerBeat)
}

// TogglePause stops or resumes the pulses. Resuming sends a reset first so
// the pattern starts from the top.
func (m *Metronome) TogglePause() bool {
	m.mu.Lock()
	m.paused = !m.paused
	paused := m.paused
	m.mu.Unlock()

	if !paused {
		m.out.PulseReset()
	}
	m.interrupt()
	debug.Log("metronome", "paused=%v", paused)
	return paused
}

// Paused reports whether pulses are stopped.
func (m *Metronome) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Pulses is the number of clock pulses sent.
func (m *Metronome) Pulses() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pulses
}

// Run pulses until ctx is done. It starts with a reset.
func (m *Metronome) Run(ctx context.Context) {
	m.out.PulseReset()
	debug.Log("metronome", "started at %d bpm", m.Tempo())

	next := time.Now()
	for {
		m.mu.Lock()
		paused, iv := m.paused, interval(m.tempo)
		m.mu.Unlock()

		if paused {
			select {
			case <-ctx.Done():
				return
			case <-m.wake:
				next = time.Now()
				continue
			}
		}

		next = next.Add(iv)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-m.wake:
			timer.Stop()
			next = time.Now()
			continue
		case <-timer.C:
		}

		m.mu.Lock()
		m.pulses++
		m.mu.Unlock()
		m.out.PulseClock()
	}
}

func (m *Metronome) interrupt() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
