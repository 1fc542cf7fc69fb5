package sequencer

import (
	"math/bits"

	"github.com/pkg/errors"

	"gridseq/grid"
)

// ErrBadAddress means a (row, col) reached dispatch that the panel geometry
// has no control for.
var ErrBadAddress = errors.New("no control at address")

// Top register bits.
const (
	BitPart0  = 0 // 0-3 part buttons, row 2 cols 4-7
	BitTrack0 = 4 // 4-7 track buttons, row 3 cols 4-7
	BitShift  = 8 // row 4: shift, copy, clear, velocity
	BitCopy   = 9
	BitClear  = 10
	BitVel    = 11
)

// Bitfield is a 32 bit register of switch states.
type Bitfield uint32

// Set sets or clears bit.
func (b *Bitfield) Set(bit uint, on bool) {
	if on {
		*b |= 1 << bit
	} else {
		*b &^= 1 << bit
	}
}

// Is reports whether bit is set.
func (b Bitfield) Is(bit uint) bool {
	return b&(1<<bit) != 0
}

// Buttons holds every momentary switch on the panel.
type Buttons struct {
	// 0-3  : Part (row 2)
	// 4-7  : Track (row 3)
	// 8-11 : Shift, Copy, Clear, Vel (row 4)
	top Bitfield

	// 0-15  : Rotary button
	// 16-31 : Step button
	step Bitfield
}

// SetTop sets a function button. They sit at rows 2-4, columns 4-7.
func (b *Buttons) SetTop(row grid.Row, col grid.Col, on bool) error {
	if row < 2 || row > 4 || col < 4 || col >= grid.Cols {
		return errors.Wrapf(ErrBadAddress, "top button row %d col %d", row, col)
	}
	b.top.Set(uint(row-2)*4+uint(col-4), on)
	return nil
}

// SetRotary sets an encoder push button, rows 0-1.
func (b *Buttons) SetRotary(row grid.Row, col grid.Col, on bool) error {
	if row < 0 || row > 1 || col < 0 || col >= grid.Cols {
		return errors.Wrapf(ErrBadAddress, "rotary button row %d col %d", row, col)
	}
	b.step.Set(uint(row)*8+uint(col), on)
	return nil
}

// SetStep sets a step button, rows 0-1.
func (b *Buttons) SetStep(row grid.Row, col grid.Col, on bool) error {
	if row < 0 || row > 1 || col < 0 || col >= grid.Cols {
		return errors.Wrapf(ErrBadAddress, "step button row %d col %d", row, col)
	}
	b.step.Set(16+uint(row)*8+uint(col), on)
	return nil
}

// IsClear reports that nothing is pressed.
func (b *Buttons) IsClear() bool {
	return b.top == 0 && b.step == 0
}

func (b *Buttons) IsShift() bool { return b.top.Is(BitShift) }
func (b *Buttons) IsCopy() bool  { return b.top.Is(BitCopy) }
func (b *Buttons) IsClearHeld() bool {
	return b.top.Is(BitClear)
}
func (b *Buttons) IsVel() bool { return b.top.Is(BitVel) }

// IsRotaryTop returns which encoder button on row 0 is held, only when it
// is the single one held on that row.
func (b *Buttons) IsRotaryTop() (int, bool) {
	return single(uint32(b.step) & 0x00ff)
}

// IsRotaryBottom is IsRotaryTop for row 1.
func (b *Buttons) IsRotaryBottom() (int, bool) {
	return single((uint32(b.step) & 0xff00) >> 8)
}

func single(x uint32) (int, bool) {
	if bits.OnesCount32(x) != 1 {
		return 0, false
	}
	return bits.TrailingZeros32(x), true
}

// IsControl reports whether the panel has an LED button at row, col.
func IsControl(row grid.Row, col grid.Col) bool {
	switch {
	case col < 0 || col >= grid.Cols:
		return false
	case row == 0 || row == 1:
		return true
	case row >= 2 && row <= 4:
		return col >= 4
	}
	return false
}
