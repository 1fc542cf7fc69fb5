package sequencer

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"gridseq/grid"
)

func newTestState(patternLen, trackLen int) *AppState {
	return NewAppState(Defaults{PatternLength: patternLen, TrackLength: trackLen})
}

// apply runs ops the way the main loop does, with a Tick after each.
func apply(t *testing.T, s *AppState, ops ...Oper) {
	t.Helper()
	for _, op := range ops {
		if err := s.ApplyOper(op); err != nil {
			t.Fatalf("%v: %v", op, err)
		}
		s.Tick()
	}
}

func clocks(t *testing.T, s *AppState, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		apply(t, s, Clock(10*time.Millisecond))
	}
}

func tap(row grid.Row, col grid.Col) []Oper {
	return []Oper{LedButton(row, col, true), LedButton(row, col, false)}
}

func TestFreeTrackIgnoresPatternLength(t *testing.T) {
	s := newTestState(16, 16)
	s.tracks[1].Params.Length = 10
	s.tracks[1].Params.Sync = SyncFree

	clocks(t, s, 23)
	if got := s.TrackPlayhead(1); got != 3 {
		t.Errorf("free track playhead = %d, want 3", got)
	}
	if s.ClockCount() != 23 {
		t.Errorf("clock count = %d", s.ClockCount())
	}
}

func TestPatternSyncWrapsAtShorterLength(t *testing.T) {
	s := newTestState(8, 20)
	for k := 1; k <= 40; k++ {
		clocks(t, s, 1)
		if s.Playhead() != k%8 {
			t.Fatalf("after %d clocks playhead = %d", k, s.Playhead())
		}
		if s.TrackPlayhead(0) != k%8 {
			t.Fatalf("after %d clocks track playhead = %d", k, s.TrackPlayhead(0))
		}
	}
}

func TestResetTakesEffectOnNextClock(t *testing.T) {
	s := newTestState(4, 5)
	s.tracks[1].Params.Sync = SyncReset
	s.tracks[2].Params.Sync = SyncFree
	s.tracks[2].Params.Length = 10

	clocks(t, s, 7)
	if got := s.TrackPlayhead(1); got != 2 {
		t.Fatalf("reset track playhead = %d, want 2", got)
	}

	apply(t, s, Reset())
	if s.Playhead() != 3 {
		t.Errorf("reset alone moved the playhead to %d", s.Playhead())
	}

	clocks(t, s, 1)
	if s.Playhead() != 0 {
		t.Errorf("playhead = %d after reset and clock", s.Playhead())
	}
	for i := 0; i < 2; i++ {
		if s.TrackPlayhead(i) != 0 {
			t.Errorf("track %d playhead = %d after reset", i, s.TrackPlayhead(i))
		}
	}
	if got := s.TrackPlayhead(2); got != 8 {
		t.Errorf("free track followed the reset: %d", got)
	}

	clocks(t, s, 1)
	if s.Playhead() != 1 {
		t.Errorf("reset was applied twice")
	}
}

func TestPausedClockOnlyPredicts(t *testing.T) {
	s := newTestState(16, 16)
	apply(t, s, LedButton(4, 4, true), RotaryEncoder(1, 3, -1), LedButton(4, 4, false))
	s.Tick()
	if s.Params().Play {
		t.Fatal("pattern still playing")
	}

	clocks(t, s, 3)
	if s.ClockCount() != 0 || s.Playhead() != 0 {
		t.Errorf("paused pattern advanced: count %d playhead %d", s.ClockCount(), s.Playhead())
	}
	if s.Predicted() != 10*time.Millisecond {
		t.Errorf("predicted = %v", s.Predicted())
	}
}

func TestPanelResetChord(t *testing.T) {
	s := newTestState(16, 16)
	clocks(t, s, 5)

	apply(t, s, LedButton(4, 4, true), LedButton(4, 7, true))
	if s.Mode().Mode != ModeReset {
		t.Fatalf("mode = %v", s.Mode())
	}
	for col, c := range s.LedRow(4) {
		if c != grid.Grn {
			t.Errorf("reset LED %d is %v", col, c)
		}
	}
	if s.Playhead() != 5 {
		t.Errorf("chord moved the playhead to %d", s.Playhead())
	}

	clocks(t, s, 1)
	if s.Playhead() != 0 {
		t.Errorf("playhead = %d after panel reset", s.Playhead())
	}

	apply(t, s, LedButton(4, 7, false))
	if s.Mode().Mode != ModeShift {
		t.Errorf("mode = %v after releasing velocity", s.Mode())
	}
	apply(t, s, LedButton(4, 4, false))
	if s.Mode().Mode != ModeWaitForClear {
		t.Errorf("mode = %v after releasing shift", s.Mode())
	}
	s.Tick()
	if s.Mode().Mode != ModeNormal {
		t.Errorf("mode = %v with nothing held", s.Mode())
	}
}

func TestRotaryNormalEditsToneOfSelectedTracks(t *testing.T) {
	s := newTestState(16, 16)
	apply(t, s, RotaryEncoder(1, 3, 4))
	if got := s.tracks[0].Steps[11].Tone.Get(); got != 4 {
		t.Errorf("tone = %d, want 4", got)
	}

	apply(t, s, tap(3, 6)...)
	apply(t, s, RotaryEncoder(0, 0, -2))
	for _, i := range []int{0, 2} {
		if got := s.tracks[i].Steps[0].Tone.Get(); got != -2 {
			t.Errorf("track %d tone = %d, want -2", i, got)
		}
	}
	if s.tracks[1].Steps[0].Tone.Get() != 0 {
		t.Error("unselected track was edited")
	}
}

func TestRotaryShiftEditsParameters(t *testing.T) {
	s := newTestState(16, 16)
	apply(t, s,
		LedButton(4, 4, true),
		RotaryEncoder(0, 0, -6),
		RotaryEncoder(0, 1, 100),
		RotaryEncoder(0, 4, 1),
		RotaryEncoder(1, 0, -8),
		RotaryEncoder(1, 1, 10),
		RotaryEncoder(1, 6, 2),
		RotaryEncoder(1, 7, -12),
	)
	if s.Mode().Mode != ModeShift {
		t.Fatalf("mode = %v", s.Mode())
	}

	tp := s.Track(0).Params
	if tp.Length != 10 {
		t.Errorf("track length = %d", tp.Length)
	}
	if tp.Velocity.Get() != 127 {
		t.Errorf("track velocity = %d", tp.Velocity.Get())
	}
	if tp.Sync != SyncReset {
		t.Errorf("sync = %v", tp.Sync)
	}

	p := s.Params()
	if p.Length != 8 || p.Swing.Get() != 60 || p.Scale != Seven || p.Root.Get() != 36 {
		t.Errorf("pattern params = %+v", p)
	}
	if s.tracks[0].Steps[0] != (TrackStep{}) {
		t.Error("shift edit touched a step")
	}
}

func TestRotaryVelocityMode(t *testing.T) {
	s := newTestState(16, 16)
	apply(t, s,
		LedButton(4, 7, true),
		RotaryEncoder(0, 1, -20),
		LedButton(0, 1, true),
		LedButton(0, 1, false),
	)
	st := s.tracks[0].Steps[1]
	if st.Velocity.Get() != -20 {
		t.Errorf("velocity offset = %d", st.Velocity.Get())
	}
	if !st.Legato || st.On {
		t.Errorf("step press in velocity mode: %+v", st)
	}
}

func TestHoldEditsTheOtherRow(t *testing.T) {
	s := newTestState(16, 16)
	apply(t, s, RotaryButton(0, 2, true))
	if want := (MachineState{Mode: ModeHoldUpper, Held: 2}); s.Mode() != want {
		t.Fatalf("mode = %v, want %v", s.Mode(), want)
	}

	apply(t, s, RotaryEncoder(1, 5, -30), RotaryEncoder(0, 5, 7))
	if got := s.tracks[0].Steps[13].Probability.Get(); got != -30 {
		t.Errorf("probability offset = %d", got)
	}
	if s.tracks[0].Steps[5] != (TrackStep{}) {
		t.Error("turning the held row edited a step")
	}

	apply(t, s, RotaryButton(0, 2, false))
	s.Tick()
	apply(t, s, RotaryButton(1, 0, true), RotaryEncoder(0, 3, 10))
	if got := s.tracks[0].Steps[3].Length.Get(); got != 10 {
		t.Errorf("length offset = %d", got)
	}
}

func TestStepToggleAndClear(t *testing.T) {
	s := newTestState(16, 16)
	apply(t, s, tap(0, 2)...)
	if !s.tracks[0].Steps[2].On {
		t.Fatal("step not toggled on")
	}
	apply(t, s, tap(0, 2)...)
	if s.tracks[0].Steps[2].On {
		t.Fatal("step not toggled off")
	}

	apply(t, s, RotaryEncoder(0, 2, 9))
	apply(t, s, tap(0, 2)...)
	apply(t, s, LedButton(4, 6, true))
	apply(t, s, tap(0, 2)...)
	if s.tracks[0].Steps[2] != (TrackStep{}) {
		t.Errorf("step not cleared: %+v", s.tracks[0].Steps[2])
	}
}

func TestCopyAndSelectPart(t *testing.T) {
	s := newTestState(128, 128)
	apply(t, s, tap(0, 1)...)
	apply(t, s, RotaryEncoder(0, 1, 3))

	apply(t, s, LedButton(4, 5, true))
	apply(t, s, tap(2, 5)...)
	apply(t, s, LedButton(4, 5, false))

	if s.SelectedPart() != 0 {
		t.Errorf("copy changed the selected part to %d", s.SelectedPart())
	}
	if got := s.tracks[0].Steps[17]; !got.On || got.Tone.Get() != 3 {
		t.Errorf("part not copied: %+v", got)
	}

	apply(t, s, LedButton(4, 4, true))
	apply(t, s, tap(2, 6)...)
	if s.SelectedPart() != 6 {
		t.Errorf("part = %d, want 6", s.SelectedPart())
	}
	apply(t, s, LedButton(4, 4, false))
	s.Tick()

	apply(t, s, tap(1, 0)...)
	if !s.tracks[0].Steps[6*16+8].On {
		t.Error("step press did not land in part 6")
	}
}

func TestTrackSelection(t *testing.T) {
	s := newTestState(16, 16)
	if got := s.SelectedTracks().Selected(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("boot selection = %v", got)
	}
	apply(t, s, tap(3, 7)...)
	apply(t, s, tap(3, 4)...)
	if got := s.SelectedTracks().Selected(); len(got) != 1 || got[0] != 3 {
		t.Errorf("selection = %v", got)
	}
}

func TestBadAddress(t *testing.T) {
	s := newTestState(16, 16)
	for _, op := range []Oper{
		LedButton(3, 1, true),
		LedButton(2, 0, true),
		RotaryEncoder(2, 0, 1),
		RotaryButton(1, 8, true),
	} {
		if err := s.ApplyOper(op); errors.Cause(err) != ErrBadAddress {
			t.Errorf("%v: expected ErrBadAddress, got %v", op, err)
		}
	}
}

func TestLeds(t *testing.T) {
	s := newTestState(16, 16)
	if s.LedRow(0)[0] != grid.Grn {
		t.Error("playhead LED not green")
	}
	if s.LedRow(2)[4] != grid.Red || s.LedRow(3)[4] != grid.Red {
		t.Error("part 0 or track 0 LED not lit")
	}
	row := s.LedRow(2)
	row[4] = grid.Off
	if s.LedRow(2)[4] != grid.Red {
		t.Error("LedRow exposed the LED buffer")
	}

	apply(t, s, tap(0, 2)...)
	if s.LedRow(0)[2] != grid.Red {
		t.Error("step LED not lit")
	}

	apply(t, s, LedButton(4, 4, true))
	if s.LedRow(4)[4] != grid.Red {
		t.Error("shift LED not lit")
	}
	apply(t, s, tap(2, 5)...)
	if s.LedRow(2)[5] != grid.Grn || s.LedRow(2)[4] != grid.Off {
		t.Errorf("upper part LED row = %v", s.LedRow(2))
	}

	s.tracks[0].Params.Length = 10
	s.tracks[0].Steps[12].On = true
	s.selectedPart = 0
	s.renderLeds()
	if s.LedRow(1)[4] != grid.Off {
		t.Error("step past the track length is lit")
	}
}

func TestResolve(t *testing.T) {
	tr := NewTrack(16)
	p := DefaultPatternParams(16)

	tr.Steps[0].Tone.Set(2)
	if got := tr.Resolve(0, &p).Tone; got != 52 {
		t.Errorf("tone = %v, want E4", got)
	}

	tr.Steps[1].Scale.Set(1)
	tr.Steps[1].Tone.Set(3)
	if got := tr.Resolve(1, &p).Tone; got != 54 {
		t.Errorf("lydian tone = %d, want 54", got)
	}

	tr.Steps[2].Tone.Set(127)
	if got := tr.Resolve(2, &p).Tone; got != 101 {
		t.Errorf("tone not clamped: %d", got)
	}

	tr.Steps[3].Velocity.Set(60)
	tr.Steps[3].Probability.Set(-30)
	tr.Steps[3].Length.Set(70)
	r := tr.Resolve(3, &p)
	if r.Velocity != 127 || r.Probability != 70 || r.Length != 100 {
		t.Errorf("resolved = %+v", r)
	}
}
