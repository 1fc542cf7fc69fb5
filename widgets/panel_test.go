package widgets

import (
	"strings"
	"testing"

	"gridseq/grid"
	"gridseq/theme"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		row  grid.Row
		col  grid.Col
		want string
	}{
		{0, 0, "1"},
		{1, 7, "16"},
		{2, 4, "P1"},
		{3, 6, "T3"},
		{4, 7, "VE"},
		{2, 3, ""},
		{4, 0, ""},
	}
	for _, tt := range tests {
		if got := Label(tt.row, tt.col); got != tt.want {
			t.Errorf("Label(%d, %d) = %q, want %q", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestRenderLedGridShape(t *testing.T) {
	th := theme.New(nil)
	var leds [grid.Rows]grid.LedRow
	leds[0][0] = grid.Red
	out := RenderLedGrid(leds, Cursor{Row: 1, Col: 2}, func(r grid.Row, c grid.Col) bool { return r == 4 && c == 4 }, th)

	lines := strings.Split(out, "\n")
	if len(lines) != grid.Rows+1 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(out, string(th.Symbols.Cursor)) || !strings.Contains(out, string(th.Symbols.Latched)) {
		t.Error("cursor or latch marker missing")
	}
	if !strings.Contains(lines[5], "SH CP CL VE") {
		t.Errorf("function row labels missing: %q", lines[5])
	}
}
