// Package sim is a host front panel: virtual lines behaving like the
// multiplexed grid, switches and encoders of the hardware.
package sim

import (
	"sync"
	"time"

	"gridseq/grid"
	"gridseq/hw"
	"gridseq/input"
	"gridseq/sequencer"
)

type lineMode uint8

const (
	floating lineMode = iota
	low
	high
)

// Panel is safe for concurrent use: the loop drives and reads lines while a
// front end presses buttons and reads LEDs.
type Panel struct {
	mu sync.Mutex

	rows [grid.Rows]lineMode
	cols [grid.Cols]lineMode

	red [grid.Rows][grid.Cols]bool
	grn [grid.Rows][grid.Cols]bool

	switches [grid.Rows][grid.Cols]bool
	// bumped on every switch change so a stale tap release is ignored
	switchGen [grid.Rows][grid.Cols]uint64
	rotary   [input.RotaryRows][grid.Cols]bool
	encoders [input.RotaryRows][grid.Cols]encoder

	clock pulseLine
	reset pulseLine

	perDetent int
}

// NewPanel returns a panel whose encoders move perDetent phase
// transitions per detent.
func NewPanel(perDetent int) *Panel {
	if perDetent < 1 {
		perDetent = 1
	}
	return &Panel{perDetent: perDetent}
}

// LedLines are the row and column lines for grid.NewLedGrid.
func (p *Panel) LedLines() ([grid.Rows]hw.Line, [grid.Cols]hw.Line) {
	var rows [grid.Rows]hw.Line
	var cols [grid.Cols]hw.Line
	for i := range rows {
		rows[i] = rowLine{p, i}
	}
	for i := range cols {
		cols[i] = colLine{p, i}
	}
	return rows, cols
}

// InputLines are the switch, encoder, clock and reset lines.
func (p *Panel) InputLines() input.Lines {
	l := input.Lines{
		Clock: hw.InputFunc(func() (bool, error) { return p.sample(&p.clock), nil }),
		Reset: hw.InputFunc(func() (bool, error) { return p.sample(&p.reset), nil }),
	}
	for row := range l.Switches {
		l.Switches[row] = hw.InputFunc(func() (bool, error) {
			return p.read(func(col int) bool { return p.switches[row][col] }), nil
		})
	}
	for row := range l.RotarySwitches {
		l.RotarySwitches[row] = hw.InputFunc(func() (bool, error) {
			return p.read(func(col int) bool { return p.rotary[row][col] }), nil
		})
		l.Encoders[row] = phasePair{p, row}
	}
	return l
}

// activeCol is the column driven for a read, or -1 while LEDs are lit.
func (p *Panel) activeCol() int {
	for _, r := range p.rows {
		if r != floating {
			return -1
		}
	}
	col := -1
	for i, c := range p.cols {
		if c == high {
			if col >= 0 {
				return -1
			}
			col = i
		}
	}
	return col
}

func (p *Panel) read(get func(col int) bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	col := p.activeCol()
	if col < 0 {
		return false
	}
	return get(col)
}

// Press holds down the LED button at row, col. Positions without a
// control are ignored.
func (p *Panel) Press(row grid.Row, col grid.Col) { p.setSwitch(row, col, true) }

// Release lets go of the LED button at row, col.
func (p *Panel) Release(row grid.Row, col grid.Col) { p.setSwitch(row, col, false) }

// Toggle latches or unlatches the LED button, returning the new state.
func (p *Panel) Toggle(row grid.Row, col grid.Col) bool {
	if !sequencer.IsControl(row, col) {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switchGen[row][col]++
	p.switches[row][col] = !p.switches[row][col]
	return p.switches[row][col]
}

// Tap presses the LED button and releases it after d, unless the button
// was pressed, released or tapped again in the meantime.
func (p *Panel) Tap(row grid.Row, col grid.Col, d time.Duration) {
	gen, ok := p.setSwitch(row, col, true)
	if !ok {
		return
	}
	time.AfterFunc(d, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.switchGen[row][col] == gen {
			p.switches[row][col] = false
		}
	})
}

// IsPressed reports whether the LED button is held.
func (p *Panel) IsPressed(row grid.Row, col grid.Col) bool {
	if !sequencer.IsControl(row, col) {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.switches[row][col]
}

func (p *Panel) setSwitch(row grid.Row, col grid.Col, on bool) (uint64, bool) {
	if !sequencer.IsControl(row, col) {
		return 0, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switchGen[row][col]++
	p.switches[row][col] = on
	return p.switchGen[row][col], true
}

// ToggleRotary latches or unlatches an encoder push button.
func (p *Panel) ToggleRotary(row grid.Row, col grid.Col) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotary[row][col] = !p.rotary[row][col]
	return p.rotary[row][col]
}

// IsRotaryHeld reports whether the encoder push button is held.
func (p *Panel) IsRotaryHeld(row grid.Row, col grid.Col) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rotary[row][col]
}

// SetRotary holds or releases an encoder push button.
func (p *Panel) SetRotary(row grid.Row, col grid.Col, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotary[row][col] = on
}

// Turn queues detents on the encoder at row, col; negative turns back.
func (p *Panel) Turn(row grid.Row, col grid.Col, detents int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.encoders[row][col].pending += detents * p.perDetent
}

// PulseClock queues one clock pulse.
func (p *Panel) PulseClock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock.pending++
}

// PulseReset queues one reset pulse.
func (p *Panel) PulseReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset.pending++
}

// Leds returns what the scan last lit.
func (p *Panel) Leds() [grid.Rows]grid.LedRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out [grid.Rows]grid.LedRow
	for r := range out {
		for c := range out[r] {
			switch {
			case p.red[r][c]:
				out[r][c] = grid.Red
			case p.grn[r][c]:
				out[r][c] = grid.Grn
			}
		}
	}
	return out
}

// observe records the LED at (row of the lit row, col) once col has been
// set for the current step. Rows are always set before columns.
func (p *Panel) observe(col int) {
	for r, mode := range p.rows {
		switch mode {
		case high:
			p.red[r][col] = p.cols[col] == low
		case low:
			p.grn[r][col] = p.cols[col] == high
		}
	}
}

type rowLine struct {
	p   *Panel
	row int
}

func (l rowLine) SetOutput(v bool) {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	l.p.rows[l.row] = level(v)
}

func (l rowLine) Disable() {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	l.p.rows[l.row] = floating
}

type colLine struct {
	p   *Panel
	col int
}

func (l colLine) SetOutput(v bool) {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	l.p.cols[l.col] = level(v)
	l.p.observe(l.col)
}

func (l colLine) Disable() {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	l.p.cols[l.col] = floating
	l.p.observe(l.col)
}

func level(v bool) lineMode {
	if v {
		return high
	}
	return low
}

// pulseLine idles high. Each pending pulse reads low once, then high once,
// so no pulse is lost however slowly the line is sampled.
type pulseLine struct {
	pending int
	isLow   bool
}

func (p *Panel) sample(l *pulseLine) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l.isLow {
		l.isLow = false
		l.pending--
		return true
	}
	if l.pending > 0 {
		l.isLow = true
		return false
	}
	return true
}

// encoder replays gray code one transition per read of its column.
type encoder struct {
	pos     int
	pending int
}

type phasePair struct {
	p   *Panel
	row int
}

func (pp phasePair) Phases() (bool, bool, error) {
	p := pp.p
	p.mu.Lock()
	defer p.mu.Unlock()
	col := p.activeCol()
	if col < 0 {
		return false, false, nil
	}
	e := &p.encoders[pp.row][col]
	switch {
	case e.pending > 0:
		e.pos = (e.pos + 1) % 4
		e.pending--
	case e.pending < 0:
		e.pos = (e.pos + 3) % 4
		e.pending++
	}
	g := hw.GrayForward[e.pos]
	return g&2 != 0, g&1 != 0, nil
}
