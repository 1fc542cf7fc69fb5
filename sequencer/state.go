package sequencer

import (
	"time"

	"github.com/pkg/errors"

	"gridseq/debug"
	"gridseq/grid"
	"gridseq/tempo"
)

// TrackCount is the number of tracks.
const TrackCount = 4

// Defaults are the boot values of the app state.
type Defaults struct {
	PatternLength int
	TrackLength   int
}

// AppState is the sequencer state. It is owned by the main loop and only
// changed through ApplyOper and Tick.
type AppState struct {
	mstate MachineState

	// If next tick is going to reset back to 0.
	nextIsReset bool

	tempo     tempo.Predictor
	predicted time.Duration

	// Ever increasing count of the clock. Never resets.
	clockCount uint64

	// Current global playhead. Goes from 0 until the next reset.
	playhead uint64

	params PatternParams

	selectedTracks TrackSelection

	// Currently selected part, 0-7.
	selectedPart int

	tracks        [TrackCount]Track
	trackPlayhead [TrackCount]int

	buttons Buttons

	// row 0 - step row 1
	// row 1 - step row 2
	// row 2 - part (col 4-7)
	// row 3 - track (col 4-7)
	// row 4 - shift, copy, clear, vel (col 4-7)
	leds [grid.Rows]grid.LedRow
}

// TrackSelection is a bit per selected track.
type TrackSelection uint8

// Toggle flips the selection of track.
func (t *TrackSelection) Toggle(track int) {
	*t ^= 1 << track
}

// Has reports whether track is selected.
func (t TrackSelection) Has(track int) bool {
	return t&(1<<track) != 0
}

// Selected lists the selected tracks in order.
func (t TrackSelection) Selected() []int {
	var out []int
	for i := 0; i < TrackCount; i++ {
		if t.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// NewAppState returns the boot state: track 0 and part 0 selected.
func NewAppState(d Defaults) *AppState {
	s := &AppState{
		params:         DefaultPatternParams(d.PatternLength),
		selectedTracks: 1,
	}
	for i := range s.tracks {
		s.tracks[i] = NewTrack(d.TrackLength)
	}
	s.renderLeds()
	return s
}

// LedRow returns a copy of the colors of a row for the LED driver.
func (s *AppState) LedRow(row grid.Row) grid.LedRow {
	return s.leds[row]
}

// Mode is the current machine state.
func (s *AppState) Mode() MachineState { return s.mstate }

// Params returns the pattern parameters.
func (s *AppState) Params() PatternParams { return s.params }

// Track returns a copy of track i.
func (s *AppState) Track(i int) Track { return s.tracks[i] }

// SelectedPart is the part steps are addressed in.
func (s *AppState) SelectedPart() int { return s.selectedPart }

// SelectedTracks are the tracks edits apply to.
func (s *AppState) SelectedTracks() TrackSelection { return s.selectedTracks }

// ClockCount is the number of clock pulses since boot.
func (s *AppState) ClockCount() uint64 { return s.clockCount }

// Predicted is the predicted interval to the next clock pulse.
func (s *AppState) Predicted() time.Duration { return s.predicted }

// Playhead is the current pattern step, 0 to pattern length - 1.
func (s *AppState) Playhead() int {
	return int(s.playhead % uint64(s.params.Length))
}

// TrackPlayhead is the current step of track i.
func (s *AppState) TrackPlayhead(i int) int {
	return s.trackPlayhead[i]
}

// ApplyOper applies one operation. An error means the operation addressed
// a control that does not exist.
func (s *AppState) ApplyOper(op Oper) error {
	switch op.Kind {
	case KindClock:
		s.predicted = s.tempo.Predict(op.Interval)
		if !s.params.Play {
			return nil
		}
		s.clockCount++

		if s.nextIsReset {
			s.nextIsReset = false
			s.playhead = 0
		} else {
			s.playhead++
		}

		s.updateTrackPlayhead()
		debug.Trace("seq", "Tick playhead: %d tick_count: %d", s.playhead, s.clockCount)

	case KindReset:
		s.armReset()
		debug.Log("seq", "Reset")

	case KindRotaryEncoder:
		return s.handleRotary(op.Row, op.Col, op.Delta)

	case KindLedButton:
		if op.Row < 2 {
			if err := s.buttons.SetStep(op.Row, op.Col, op.Pressed); err != nil {
				return err
			}
			if op.Pressed {
				s.handleStepPress(op.Row, op.Col)
			}
			return nil
		}
		if err := s.buttons.SetTop(op.Row, op.Col, op.Pressed); err != nil {
			return err
		}
		if op.Pressed {
			s.handleTopPress(op.Row, op.Col)
		}

	case KindRotaryButton:
		return s.buttons.SetRotary(op.Row, op.Col, op.Pressed)

	default:
		return errors.Errorf("unknown oper kind %d", op.Kind)
	}
	return nil
}

// Tick runs the mode machine against the buttons and refreshes the LEDs.
func (s *AppState) Tick() {
	prev := s.mstate
	s.mstate = s.mstate.Next(&s.buttons)
	if s.mstate != prev {
		debug.Trace("seq", "mode %v -> %v", prev, s.mstate)
		if s.mstate.Mode == ModeReset {
			s.armReset()
			debug.Log("seq", "Reset from panel")
		}
	}
	s.renderLeds()
}

// armReset makes the next clock pulse restart at 0, so a reset and the
// clock edge revealing it are seen together.
func (s *AppState) armReset() {
	s.tempo.Reset()
	s.nextIsReset = true
}

func (s *AppState) updateTrackPlayhead() {
	plen := s.params.Length
	playhead := s.Playhead()

	for i := range s.tracks {
		p := &s.tracks[i].Params
		n := p.Length
		switch p.Sync {
		case SyncPattern:
			s.trackPlayhead[i] = playhead % min(plen, n)
		case SyncReset:
			s.trackPlayhead[i] = int(s.playhead % uint64(n))
		case SyncFree:
			s.trackPlayhead[i] = int(s.clockCount % uint64(n))
		}
	}
}

func (s *AppState) step(track int, row grid.Row, col grid.Col) *TrackStep {
	return &s.tracks[track].Steps[StepIndex(s.selectedPart, int(row), int(col))]
}

func (s *AppState) handleRotary(row grid.Row, col grid.Col, v int8) error {
	if row < 0 || row > 1 || col < 0 || col >= grid.Cols {
		return errors.Wrapf(ErrBadAddress, "encoder row %d col %d", row, col)
	}
	switch s.mstate.Mode {
	case ModeNormal:
		for _, i := range s.selectedTracks.Selected() {
			s.step(i, row, col).Tone.Add(v)
		}
	case ModeShift:
		s.handleRotaryShift(row, col, v)
	case ModeVelocity:
		for _, i := range s.selectedTracks.Selected() {
			s.step(i, row, col).Velocity.Add(v)
		}
	case ModeHoldUpper:
		// the held encoder's own row is not an edit
		if row == 1 {
			s.handleRotaryHold(row, col, v)
		}
	case ModeHoldLower:
		if row == 0 {
			s.handleRotaryHold(row, col, v)
		}
	}
	return nil
}

func (s *AppState) handleRotaryShift(row grid.Row, col grid.Col, v int8) {
	if row == 0 {
		// Track functions.
		for _, i := range s.selectedTracks.Selected() {
			p := &s.tracks[i].Params
			switch col {
			case 0:
				p.AddLength(v)
			case 1:
				p.Velocity.Add(v)
			case 2:
				p.Probability.Add(v)
			case 3:
				p.Slew.Add(v)
			case 4:
				p.AddSync(v)
			case 5:
				p.StepLength.Add(v)
			case 6:
				p.LFO = v > 0
			}
		}
		s.updateTrackPlayhead()
		return
	}

	// Global/pattern functions
	switch col {
	case 0:
		s.params.AddLength(v)
		s.updateTrackPlayhead()
	case 1:
		s.params.Swing.Add(v)
	case 2:
		s.params.AddDirection(v)
	case 3:
		s.params.Play = v > 0
	case 6:
		s.params.Scale.Add(v)
	case 7:
		s.params.Root.Add(v)
	}
}

func (s *AppState) handleRotaryHold(row grid.Row, col grid.Col, v int8) {
	for _, i := range s.selectedTracks.Selected() {
		st := s.step(i, row, col)
		switch s.mstate.Held {
		case 0:
			st.Length.Add(v)
		case 1:
			st.Velocity.Add(v)
		case 2:
			st.Probability.Add(v)
		case 3:
			st.Slew.Add(v)
		case 4:
			st.Spread.Add(v)
		case 5:
			st.Tone.Add(v)
		case 6:
			st.Scale.Add(v)
		case 7:
			st.Micro.Add(v)
		}
	}
}

func (s *AppState) handleStepPress(row grid.Row, col grid.Col) {
	for _, i := range s.selectedTracks.Selected() {
		st := s.step(i, row, col)
		switch {
		case s.mstate.Mode == ModeNormal && s.buttons.IsClearHeld():
			*st = TrackStep{}
		case s.mstate.Mode == ModeNormal:
			st.On = !st.On
		case s.mstate.Mode == ModeVelocity:
			st.Legato = !st.Legato
		}
	}
}

func (s *AppState) handleTopPress(row grid.Row, col grid.Col) {
	if s.mstate.Mode == ModeWaitForClear || s.mstate.Mode == ModeReset {
		return
	}
	n := int(col) - 4
	switch row {
	case 2:
		part := n
		if s.buttons.IsShift() {
			part += 4
		}
		if s.buttons.IsCopy() {
			s.copyPart(s.selectedPart, part)
			return
		}
		s.selectedPart = part
	case 3:
		s.selectedTracks.Toggle(n)
	}
}

func (s *AppState) copyPart(from, to int) {
	if from == to {
		return
	}
	for _, i := range s.selectedTracks.Selected() {
		steps := &s.tracks[i].Steps
		copy(steps[to*StepsPerPart:(to+1)*StepsPerPart], steps[from*StepsPerPart:(from+1)*StepsPerPart])
	}
	debug.Log("seq", "copied part %d to %d", from, to)
}
