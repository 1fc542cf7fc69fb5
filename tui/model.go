package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridseq/grid"
	"gridseq/midi"
	"gridseq/runloop"
	"gridseq/sequencer"
	"gridseq/sim"
	"gridseq/theme"
	"gridseq/widgets"
)

// TapLength is how long a tapped button stays down. It covers the debounce
// time and a full scan cycle.
const TapLength = 60 * time.Millisecond

const fps = 30

// Feed carries the loop status to the UI goroutine.
type Feed struct {
	mu     sync.Mutex
	status runloop.Status
}

// Set is the loop's OnChange callback.
func (f *Feed) Set(s runloop.Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

// Status is the last status set.
func (f *Feed) Status() runloop.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

type tickMsg time.Time

// LoopErrMsg stops the UI when the loop fails.
type LoopErrMsg struct{ Err error }

type Model struct {
	Panel     *sim.Panel
	Metronome *sim.Metronome // nil unless the clock is internal
	Devices   *midi.DeviceManager
	Feed      *Feed
	Theme     *theme.Theme

	cursor   widgets.Cursor
	err      error
	quitting bool
}

func NewModel(panel *sim.Panel, metronome *sim.Metronome, devices *midi.DeviceManager, feed *Feed, th *theme.Theme) Model {
	return Model{
		Panel:     panel,
		Metronome: metronome,
		Devices:   devices,
		Feed:      feed,
		Theme:     th,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		default:
			m.handleKey(msg.String())
		}

	case tickMsg:
		return m, tick()

	case LoopErrMsg:
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// handleKey maps a key to a panel gesture.
func (m *Model) handleKey(key string) {
	c := &m.cursor
	switch key {
	case "up", "k":
		if c.Row > 0 {
			c.Row--
		}
	case "down", "j":
		if c.Row < grid.Rows-1 {
			c.Row++
		}
	case "left", "h":
		if c.Col > 0 {
			c.Col--
		}
	case "right", "l":
		if c.Col < grid.Cols-1 {
			c.Col++
		}

	case " ", "space":
		if sequencer.IsControl(c.Row, c.Col) {
			m.Panel.Tap(c.Row, c.Col, TapLength)
		}
	case "enter":
		if c.Row < 2 {
			m.Panel.ToggleRotary(c.Row, c.Col)
		}
	case "+", "=":
		if c.Row < 2 {
			m.Panel.Turn(c.Row, c.Col, 1)
		}
	case "-", "_":
		if c.Row < 2 {
			m.Panel.Turn(c.Row, c.Col, -1)
		}

	case "tab":
		m.Panel.Toggle(4, 4)
	case "c":
		m.Panel.Toggle(4, 5)
	case "x":
		m.Panel.Toggle(4, 6)
	case "v":
		m.Panel.Toggle(4, 7)

	case "1", "2", "3", "4":
		m.Panel.Tap(2, grid.Col(4+key[0]-'1'), TapLength)
	case "5", "6", "7", "8":
		m.Panel.Tap(3, grid.Col(4+key[0]-'5'), TapLength)

	case "r":
		m.Panel.PulseReset()
	case "p":
		if m.Metronome != nil {
			m.Metronome.TogglePause()
		}
	case "[":
		if m.Metronome != nil {
			m.Metronome.SetTempo(m.Metronome.Tempo() - 5)
		}
	case "]":
		if m.Metronome != nil {
			m.Metronome.SetTempo(m.Metronome.Tempo() + 5)
		}
	}
}

func (m Model) latched(row grid.Row, col grid.Col) bool {
	if row < 2 {
		return m.Panel.IsRotaryHeld(row, col)
	}
	return m.Panel.IsPressed(row, col)
}

// Err is the loop failure that ended the UI, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	errStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	s := m.Feed.Status()

	playState := "STOP"
	if s.Params.Play {
		playState = "PLAY"
	}
	clockState := "ext"
	if m.Metronome != nil {
		clockState = fmt.Sprintf("%3dbpm", m.Metronome.Tempo())
		if m.Metronome.Paused() {
			clockState += " (paused)"
		}
	}
	measured := "---"
	if s.Predicted > 0 {
		measured = fmt.Sprintf("%.0f", float64(time.Minute)/float64(s.Predicted*sim.PulsesPerBeat))
	}

	deviceStatus := ""
	if m.Devices != nil && len(m.Devices.Connected()) > 0 {
		deviceStatus = "  LP"
	}

	header := headerStyle.Render(fmt.Sprintf("gridseq  %s  %s  ~%s  step:%03d/%d  ticks:%d%s",
		playState, clockState, measured, s.Playhead+1, s.Params.Length, s.ClockCount, deviceStatus))

	state := dimStyle.Render(fmt.Sprintf("mode:%-14v part:%d  tracks:%v  %v %v  swing:%d",
		s.Mode, s.SelectedPart+1, tracksString(s.Tracks), sequencer.Tone(s.Params.Root.Get()), s.Params.Scale, s.Params.Swing.Get()))

	panel := widgets.RenderLedGrid(m.Panel.Leds(), m.cursor, m.latched, m.Theme)

	label := widgets.Label(m.cursor.Row, m.cursor.Col)
	if label == "" {
		label = "-"
	}
	cursorLine := dimStyle.Render(fmt.Sprintf("cursor: %s", label))

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "arrows/hjkl", Desc: "move"},
			{Key: "space", Desc: "tap button"},
			{Key: "enter", Desc: "latch encoder button"},
			{Key: "+/-", Desc: "turn encoder"},
			{Key: "tab c x v", Desc: "latch shift copy clear velocity"},
			{Key: "1-4 5-8", Desc: "part, track"},
			{Key: "r p [ ]", Desc: "reset, pause, tempo"},
			{Key: "q", Desc: "quit"},
		}},
	}))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(state)
	out.WriteString("\n\n")
	out.WriteString(panel)
	out.WriteString("\n\n")
	out.WriteString(cursorLine)
	out.WriteString("\n\n")
	out.WriteString(help)
	if m.err != nil {
		out.WriteString("\n\n")
		out.WriteString(errStyle.Render(m.err.Error()))
	}
	return out.String()
}

func tracksString(t sequencer.TrackSelection) string {
	var b strings.Builder
	for i := 0; i < sequencer.TrackCount; i++ {
		if t.Has(i) {
			fmt.Fprintf(&b, "%d", i+1)
		} else {
			b.WriteString("-")
		}
	}
	return b.String()
}
