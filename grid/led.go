package grid

import "gridseq/hw"

// Grid geometry.
const (
	Rows = 5
	Cols = 8
)

// Row is a logical grid row, 0-4.
type Row int

// Col is a logical grid column, 0-7.
type Col int

// BiLed is the color of a bi-color LED.
type BiLed uint8

const (
	Off BiLed = iota
	Red
	Grn
)

func (b BiLed) String() string {
	switch b {
	case Red:
		return "red"
	case Grn:
		return "green"
	default:
		return "off"
	}
}

// LedRow is one row of LED colors.
type LedRow [Cols]BiLed

// LedGrid drives the shared row/column lines.
//
// A row line selects the color (high = red) and each column line sinks or
// sources the other side of the LED (high = green). Lines not taking part
// are floated.
type LedGrid struct {
	rows [Rows]hw.Line
	cols [Cols]hw.Line
}

// NewLedGrid takes ownership of the row and column lines.
func NewLedGrid(rows [Rows]hw.Line, cols [Cols]hw.Line) *LedGrid {
	g := &LedGrid{rows: rows, cols: cols}
	g.Blank()
	return g
}

// SetLeds lights the LEDs in row that have color on.
func (g *LedGrid) SetLeds(row Row, on BiLed, leds LedRow) {
	for i, r := range g.rows {
		if Row(i) != row || on == Off {
			r.Disable()
			continue
		}
		r.SetOutput(on == Red)
	}

	for i, c := range g.cols {
		if on == Off || leds[i] != on {
			c.Disable()
			continue
		}
		c.SetOutput(on == Grn)
	}
}

// SetCol blanks every row and drives col high so its switches can be read.
func (g *LedGrid) SetCol(col Col) {
	for _, r := range g.rows {
		r.Disable()
	}
	for i, c := range g.cols {
		if Col(i) == col {
			c.SetOutput(true)
		} else {
			c.Disable()
		}
	}
}

// Blank floats every line.
func (g *LedGrid) Blank() {
	for _, r := range g.rows {
		r.Disable()
	}
	for _, c := range g.cols {
		c.Disable()
	}
}
