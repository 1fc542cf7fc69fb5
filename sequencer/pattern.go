package sequencer

// PlayDirection is how the pattern is played.
type PlayDirection uint8

const (
	Forward PlayDirection = iota
	Backward
	Random

	numDirections = iota
)

func (d PlayDirection) String() string {
	switch d {
	case Backward:
		return "Backward"
	case Random:
		return "Random"
	default:
		return "Forward"
	}
}

// PatternParams are the global pattern parameters.
type PatternParams struct {
	// Length of entire pattern. 1-128
	Length int

	// Swing in percent. 50 is straight, below is early, above is late.
	Swing Val[Swing]

	Direction PlayDirection

	// Play is false while paused.
	Play bool

	// Root is the root key.
	Root Val[ToneRange]

	// Scale is the default scale; steps can shift it.
	Scale Scale
}

// DefaultPatternParams returns a playing pattern of length steps in C major.
func DefaultPatternParams(length int) PatternParams {
	return PatternParams{
		Length: clamp(length, 1, MaxSteps),
		Swing:  NewVal[Swing](50),
		Play:   true,
		Root:   NewVal[ToneRange](int8(MiddleC)),
		Scale:  Major,
	}
}

// AddLength changes the pattern length, clamped to 1-128.
func (p *PatternParams) AddLength(delta int8) {
	p.Length = clamp(p.Length+int(delta), 1, MaxSteps)
}

// AddDirection moves to a neighbouring play direction.
func (p *PatternParams) AddDirection(delta int8) {
	p.Direction = PlayDirection(clamp(int(p.Direction)+int(delta), 0, numDirections-1))
}
