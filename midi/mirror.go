package midi

import (
	"context"
	"time"

	"gridseq/debug"
	"gridseq/grid"
	"gridseq/sequencer"
)

const ledFPS = 30

// Panel is the front panel a controller mirrors.
type Panel interface {
	Press(row grid.Row, col grid.Col)
	Release(row grid.Row, col grid.Col)
	SetRotary(row grid.Row, col grid.Col, on bool)
	Leds() [grid.Rows]grid.LedRow
}

// Launchpad rows, counted from the bottom. The top five rows show the LED
// grid with grid row 0 at the top; the two below hold the encoder buttons.
const (
	topRow        = 7
	rotaryPadBase = topRow - grid.Rows
)

// Mirror copies the panel LEDs onto a controller and forwards its pads to
// the panel.
type Mirror struct {
	panel Panel
	ctrl  Controller

	prev   [grid.Rows]grid.LedRow
	synced bool
}

// NewMirror pairs panel and ctrl.
func NewMirror(panel Panel, ctrl Controller) *Mirror {
	return &Mirror{panel: panel, ctrl: ctrl}
}

// Flush sends the LEDs that changed since the last flush.
func (m *Mirror) Flush() error {
	leds := m.panel.Leds()
	var updates []LEDUpdate
	for r := range leds {
		for c, color := range leds[r] {
			if m.synced && m.prev[r][c] == color {
				continue
			}
			updates = append(updates, LEDUpdate{Row: topRow - r, Col: c, Color: ledColor(color)})
		}
	}
	m.prev = leds
	m.synced = true
	if len(updates) == 0 {
		return nil
	}
	debug.Trace("led", "flush: batch=%d", len(updates))
	return m.ctrl.SetLEDBatch(updates)
}

// HandlePad forwards one pad event. Pads over grid positions without a
// control are dropped.
func (m *Mirror) HandlePad(ev PadEvent) {
	switch {
	case ev.Row > rotaryPadBase && ev.Row <= topRow:
		row, col := grid.Row(topRow-ev.Row), grid.Col(ev.Col)
		if !sequencer.IsControl(row, col) {
			return
		}
		if ev.Pressed {
			m.panel.Press(row, col)
		} else {
			m.panel.Release(row, col)
		}
	case ev.Row > rotaryPadBase-2 && ev.Row <= rotaryPadBase:
		m.panel.SetRotary(grid.Row(rotaryPadBase-ev.Row), grid.Col(ev.Col), ev.Pressed)
	}
}

// Run flushes at a fixed rate and forwards pads until ctx is done or the
// controller goes away.
func (m *Mirror) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	pads := m.ctrl.PadEvents()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-pads:
			if !ok {
				return
			}
			m.HandlePad(ev)
		case <-ticker.C:
			if err := m.Flush(); err != nil {
				debug.Warn("led", "flush %s: %v", m.ctrl.ID(), err)
			}
		}
	}
}

func ledColor(c grid.BiLed) uint8 {
	switch c {
	case grid.Red:
		return ColorRed
	case grid.Grn:
		return ColorGreen
	}
	return ColorOff
}
