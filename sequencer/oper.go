package sequencer

import (
	"fmt"
	"time"

	"gridseq/grid"
)

// Kind tags an Oper.
type Kind uint8

const (
	KindClock Kind = iota
	KindReset
	KindRotaryEncoder
	KindLedButton
	KindRotaryButton
)

// Oper is an operation on the app state, produced by the input scan.
type Oper struct {
	Kind Kind
	// Interval from the previous clock pulse, for KindClock.
	Interval time.Duration
	Row      grid.Row
	Col      grid.Col
	// Delta is the encoder movement in detents.
	Delta   int8
	Pressed bool
}

// Clock is a clock pulse.
func Clock(interval time.Duration) Oper {
	return Oper{Kind: KindClock, Interval: interval}
}

// Reset is an external reset.
func Reset() Oper {
	return Oper{Kind: KindReset}
}

// RotaryEncoder is an encoder turn.
func RotaryEncoder(row grid.Row, col grid.Col, delta int8) Oper {
	return Oper{Kind: KindRotaryEncoder, Row: row, Col: col, Delta: delta}
}

// LedButton is a press or release of an LED push button.
func LedButton(row grid.Row, col grid.Col, pressed bool) Oper {
	return Oper{Kind: KindLedButton, Row: row, Col: col, Pressed: pressed}
}

// RotaryButton is a press or release of an encoder push button.
func RotaryButton(row grid.Row, col grid.Col, pressed bool) Oper {
	return Oper{Kind: KindRotaryButton, Row: row, Col: col, Pressed: pressed}
}

func (o Oper) String() string {
	switch o.Kind {
	case KindClock:
		return fmt.Sprintf("Clock(%v)", o.Interval)
	case KindReset:
		return "Reset"
	case KindRotaryEncoder:
		return fmt.Sprintf("RotaryEncoder(%d,%d,%+d)", o.Row, o.Col, o.Delta)
	case KindLedButton:
		return fmt.Sprintf("LedButton(%d,%d,%v)", o.Row, o.Col, o.Pressed)
	case KindRotaryButton:
		return fmt.Sprintf("RotaryButton(%d,%d,%v)", o.Row, o.Col, o.Pressed)
	}
	return fmt.Sprintf("Oper(%d)", o.Kind)
}
