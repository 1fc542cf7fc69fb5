package sequencer

import "gridseq/grid"

// renderLeds recomputes the LED grid from the state.
func (s *AppState) renderLeds() {
	s.leds = [grid.Rows]grid.LedRow{}

	// Steps of the selected part on the first selected track.
	if sel := s.selectedTracks.Selected(); len(sel) > 0 {
		t := &s.tracks[sel[0]]
		ph := s.trackPlayhead[sel[0]]
		for row := 0; row < 2; row++ {
			for col := 0; col < grid.Cols; col++ {
				i := StepIndex(s.selectedPart, row, col)
				switch {
				case i >= t.Params.Length:
				case i == ph:
					s.leds[row][col] = grid.Grn
				case t.Steps[i].On:
					s.leds[row][col] = grid.Red
				}
			}
		}
	}

	partColor := grid.Red
	if s.selectedPart >= 4 {
		partColor = grid.Grn
	}
	s.leds[2][4+s.selectedPart%4] = partColor

	for i := 0; i < TrackCount; i++ {
		if s.selectedTracks.Has(i) {
			s.leds[3][4+i] = grid.Red
		}
	}

	if s.mstate.Mode == ModeReset {
		for col := range s.leds[4] {
			s.leds[4][col] = grid.Grn
		}
		return
	}
	for i, bit := range []uint{BitShift, BitCopy, BitClear, BitVel} {
		if s.buttons.top.Is(bit) {
			s.leds[4][4+i] = grid.Red
		}
	}
}
