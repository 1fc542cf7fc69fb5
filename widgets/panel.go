package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gridseq/grid"
	"gridseq/sequencer"
	"gridseq/theme"
)

// topLabels name the function buttons, rows 2-4 cols 4-7.
var topLabels = [3][4]string{
	{"P1", "P2", "P3", "P4"},
	{"T1", "T2", "T3", "T4"},
	{"SH", "CP", "CL", "VE"},
}

// Label names the control at row, col, or "" where there is none.
func Label(row grid.Row, col grid.Col) string {
	if !sequencer.IsControl(row, col) {
		return ""
	}
	if row < 2 {
		return fmt.Sprintf("%d", int(row)*grid.Cols+int(col)+1)
	}
	return topLabels[row-2][col-4]
}

// RenderLed renders a single bi-color LED
func RenderLed(c grid.BiLed, th *theme.Theme) string {
	switch c {
	case grid.Red:
		return lipgloss.NewStyle().Foreground(theme.LedRed).Render(string(th.Symbols.LedOn))
	case grid.Grn:
		return lipgloss.NewStyle().Foreground(theme.LedGreen).Render(string(th.Symbols.LedOn))
	}
	return lipgloss.NewStyle().Foreground(theme.LedDark).Render(string(th.Symbols.LedOff))
}

// Cursor is a position on the panel.
type Cursor struct {
	Row grid.Row
	Col grid.Col
}

// RenderLedGrid renders the 5x8 grid, row 0 at the top. Each cell shows the
// cursor, the LED and whether its button is latched.
func RenderLedGrid(leds [grid.Rows]grid.LedRow, cursor Cursor, latched func(grid.Row, grid.Col) bool, th *theme.Theme) string {
	cursorStyle := lipgloss.NewStyle().Foreground(th.Cursor())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())

	var lines []string
	for r := grid.Row(0); r < grid.Rows; r++ {
		var line strings.Builder
		for c := grid.Col(0); c < grid.Cols; c++ {
			if cursor.Row == r && cursor.Col == c {
				line.WriteString(cursorStyle.Render(string(th.Symbols.Cursor)))
			} else {
				line.WriteString(" ")
			}

			if !sequencer.IsControl(r, c) {
				line.WriteRune(th.Symbols.NoLed)
			} else {
				line.WriteString(RenderLed(leds[r][c], th))
			}

			if latched != nil && latched(r, c) {
				line.WriteString(cursorStyle.Render(string(th.Symbols.Latched)))
			} else {
				line.WriteString(" ")
			}
		}
		if r >= 2 {
			line.WriteString(dimStyle.Render(" " + strings.Join(topLabels[r-2][:], " ")))
		}
		lines = append(lines, line.String())
		if r == 1 {
			lines = append(lines, dimStyle.Render(strings.Repeat("─", grid.Cols*3)))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
