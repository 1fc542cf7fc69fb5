package sequencer

import "fmt"

// Mode is the kind of MachineState.
type Mode uint8

const (
	// ModeNormal: no qualifier button is pressed.
	ModeNormal Mode = iota
	// ModeShift: shift is down.
	ModeShift
	// ModeVelocity: velocity is down.
	ModeVelocity
	// ModeHoldUpper: a single encoder button on row 0 is down.
	ModeHoldUpper
	// ModeHoldLower: a single encoder button on row 1 is down.
	ModeHoldLower
	// ModeReset: shift and velocity are both down.
	ModeReset
	// ModeWaitForClear: a chord ended, wait for every button to be released.
	ModeWaitForClear
)

var modeNames = [...]string{"Normal", "Shift", "Velocity", "HoldUpper", "HoldLower", "Reset", "WaitForClear"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// MachineState decides what an encoder turn edits.
type MachineState struct {
	Mode Mode
	// Held is the encoder button (0-7) for the hold modes.
	Held int
}

func (s MachineState) String() string {
	if s.Mode == ModeHoldUpper || s.Mode == ModeHoldLower {
		return fmt.Sprintf("%v(%d)", s.Mode, s.Held)
	}
	return s.Mode.String()
}

// Next returns the state following s for the current buttons.
func (s MachineState) Next(b *Buttons) MachineState {
	shift, vel := b.IsShift(), b.IsVel()
	wait := MachineState{Mode: ModeWaitForClear}

	switch s.Mode {
	case ModeNormal:
		upper, isUpper := b.IsRotaryTop()
		lower, isLower := b.IsRotaryBottom()
		if isUpper || isLower {
			// a hold needs one encoder button on one row, nothing else
			if shift || vel || isUpper == isLower {
				return s
			}
			if isUpper {
				return MachineState{Mode: ModeHoldUpper, Held: upper}
			}
			return MachineState{Mode: ModeHoldLower, Held: lower}
		}
		switch {
		case shift && vel:
			return MachineState{Mode: ModeReset}
		case shift:
			return MachineState{Mode: ModeShift}
		case vel:
			return MachineState{Mode: ModeVelocity}
		}
		return s

	case ModeShift:
		switch {
		case shift && !vel:
			return s
		case shift && vel:
			return MachineState{Mode: ModeReset}
		}
		return wait

	case ModeVelocity:
		switch {
		case vel && !shift:
			return s
		case shift && vel:
			return MachineState{Mode: ModeReset}
		}
		return wait

	case ModeHoldUpper:
		if x, ok := b.IsRotaryTop(); ok && x == s.Held {
			return s
		}
		return wait

	case ModeHoldLower:
		if x, ok := b.IsRotaryBottom(); ok && x == s.Held {
			return s
		}
		return wait

	case ModeReset:
		switch {
		case shift && vel:
			return s
		case shift:
			return MachineState{Mode: ModeShift}
		case vel:
			return MachineState{Mode: ModeVelocity}
		}
		return wait

	case ModeWaitForClear:
		if b.IsClear() {
			return MachineState{Mode: ModeNormal}
		}
		return s
	}
	return s
}
