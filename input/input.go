// Package input turns one scan of the switch, encoder, clock and reset lines
// into sequencer operations.
package input

import (
	"time"

	"github.com/pkg/errors"

	"gridseq/clock"
	"gridseq/debug"
	"gridseq/grid"
	"gridseq/hw"
	"gridseq/sequencer"
)

// Rotary rows. Encoders and their push buttons sit on grid rows 0 and 1.
const RotaryRows = 2

// Lines are the physical inputs. Switch and encoder lines are shared by all
// columns and read while a column is driven.
type Lines struct {
	// Clock and Reset are inverted: a pulse pulls the line low.
	Clock hw.Input
	Reset hw.Input

	// Switches read the LED push buttons, one line per grid row.
	Switches [grid.Rows]hw.Input

	// RotarySwitches read the encoder push buttons.
	RotarySwitches [RotaryRows]hw.Input

	// Encoders read the phase pairs.
	Encoders [RotaryRows]hw.PhaseSource
}

// Options tune the signal conditioning.
type Options struct {
	Debounce       time.Duration
	StepsPerDetent int
}

// AppInput scans the driven column and pushes what changed onto the queue.
type AppInput struct {
	queue *sequencer.OperQueue

	clock *hw.EdgeInput
	reset *hw.EdgeInput

	lastClock clock.Instant
	seenClock bool

	// conditioning state per line and column, the lines are multiplexed
	switches [grid.Rows][grid.Cols]*hw.EdgeInput
	rotary   [RotaryRows][grid.Cols]*hw.EdgeInput
	encoders [RotaryRows][grid.Cols]*hw.Quadrature

	dropped int
}

// New builds the per column conditioning over lines.
func New(lines Lines, queue *sequencer.OperQueue, opts Options) *AppInput {
	a := &AppInput{
		queue: queue,
		clock: hw.NewEdge(hw.Direct{In: lines.Clock}),
		reset: hw.NewEdge(hw.Direct{In: lines.Reset}),
	}
	debounced := func(in hw.Input) *hw.EdgeInput {
		return hw.NewEdge(hw.NewDebounce(hw.Direct{In: in}, opts.Debounce))
	}
	for col := 0; col < grid.Cols; col++ {
		for row := 0; row < grid.Rows; row++ {
			a.switches[row][col] = debounced(lines.Switches[row])
		}
		for row := 0; row < RotaryRows; row++ {
			a.rotary[row][col] = debounced(lines.RotarySwitches[row])
			a.encoders[row][col] = hw.NewQuadrature(lines.Encoders[row], opts.StepsPerDetent)
		}
	}
	return a
}

// Dropped is the number of operations lost to a full queue.
func (a *AppInput) Dropped() int {
	return a.dropped
}

// ReadInput does one scan pass over col. Operations are pushed as reset,
// clock, LED buttons from the function row down, encoder buttons, then
// encoder turns.
func (a *AppInput) ReadInput(now clock.Instant, col grid.Col) error {
	if col < 0 || col >= grid.Cols {
		return errors.Wrapf(sequencer.ErrBadAddress, "scan column %d", col)
	}

	e, ok, err := a.reset.Tick(now)
	if err != nil {
		return errors.Wrap(err, "reset line")
	}
	if ok && e.IsFalling() {
		a.push(sequencer.Reset())
	}

	e, ok, err = a.clock.Tick(now)
	if err != nil {
		return errors.Wrap(err, "clock line")
	}
	if ok && e.IsFalling() {
		var interval time.Duration
		if a.seenClock {
			interval = e.At.Sub(a.lastClock)
		}
		a.lastClock, a.seenClock = e.At, true
		a.push(sequencer.Clock(interval))
	}

	for row := grid.Rows - 1; row >= 0; row-- {
		e, ok, err := a.switches[row][col].Tick(now)
		if err != nil {
			return errors.Wrapf(err, "switch row %d", row)
		}
		if ok {
			a.push(sequencer.LedButton(grid.Row(row), col, e.IsRising()))
		}
	}

	for row := RotaryRows - 1; row >= 0; row-- {
		e, ok, err := a.rotary[row][col].Tick(now)
		if err != nil {
			return errors.Wrapf(err, "rotary switch row %d", row)
		}
		if ok {
			a.push(sequencer.RotaryButton(grid.Row(row), col, e.IsRising()))
		}
	}

	for row := 0; row < RotaryRows; row++ {
		d, err := a.encoders[row][col].Tick()
		if err != nil {
			return errors.Wrapf(err, "encoder row %d", row)
		}
		if d != 0 {
			a.push(sequencer.RotaryEncoder(grid.Row(row), col, d))
		}
	}
	return nil
}

func (a *AppInput) push(op sequencer.Oper) {
	if err := a.queue.Push(op); err != nil {
		a.dropped++
		debug.Warn("input", "%v", err)
	}
}
