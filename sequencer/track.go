package sequencer

// Step layout.
const (
	MaxSteps     = 128
	StepsPerPart = 16
	Parts        = MaxSteps / StepsPerPart
)

// TrackSync is how a track's playhead follows the pattern.
type TrackSync uint8

const (
	// SyncPattern restarts the track at pattern length and on reset.
	SyncPattern TrackSync = iota
	// SyncReset restarts the track only on reset.
	SyncReset
	// SyncFree keeps looping, ignoring both pattern length and reset.
	SyncFree

	numSyncs = iota
)

func (s TrackSync) String() string {
	switch s {
	case SyncReset:
		return "Reset"
	case SyncFree:
		return "Free"
	default:
		return "Sync"
	}
}

// Track holds parameters and all 128 steps; only the first Params.Length play.
type Track struct {
	Params TrackParams
	Steps  [MaxSteps]TrackStep
}

// TrackParams are the track level base values that steps offset from.
type TrackParams struct {
	// Length of track in clock ticks, 1-128.
	Length int

	Sync TrackSync

	// StepLength is the gate length in percent of a step. Defaults to 50.
	StepLength Val[Percent]

	// Velocity defaults to 80.
	Velocity Val[Velocity]

	// Probability defaults to 100.
	Probability Val[Percent]

	// Slew defaults to 0.
	//
	// * 0 is no slew
	// * 50 is reaching the next note at half step length.
	// * 100 is reaching the next note at step length.
	Slew Val[Percent]

	// LFO switches the velocity output to LFO mode.
	LFO bool
}

// TrackStep holds offsets from the track base values, so a zero step is an
// empty default step.
type TrackStep struct {
	On          bool
	Probability Val[Offset100]
	// Tone is in scale degrees from the pattern root.
	Tone   Val[Offset127]
	Spread Val[Percent]
	// Scale shifts the pattern scale for this step.
	Scale  Val[ScaleShift]
	Length Val[Offset100]
	// Legato overrides Length and ties into the next step. Length is kept.
	Legato   bool
	Velocity Val[Offset127]
	Slew     Val[Offset100]
	// Micro timing offset. -127 is nearly at the previous step, 127 at the next.
	Micro Val[Offset127]
}

// NewTrack returns a track of length steps with default parameters.
func NewTrack(length int) Track {
	return Track{
		Params: TrackParams{
			Length:      clamp(length, 1, MaxSteps),
			Sync:        SyncPattern,
			StepLength:  NewVal[Percent](50),
			Velocity:    NewVal[Velocity](80),
			Probability: NewVal[Percent](100),
		},
	}
}

// AddLength changes the track length, clamped to 1-128.
func (p *TrackParams) AddLength(delta int8) {
	p.Length = clamp(p.Length+int(delta), 1, MaxSteps)
}

// AddSync moves to a neighbouring sync policy.
func (p *TrackParams) AddSync(delta int8) {
	p.Sync = TrackSync(clamp(int(p.Sync)+int(delta), 0, numSyncs-1))
}

// StepIndex addresses a step from the selected part and a control position.
func StepIndex(part, row, col int) int {
	return part*StepsPerPart + row*8 + col
}

// ResolvedStep is a step with the track and pattern values applied.
type ResolvedStep struct {
	On          bool
	Tone        Tone
	Velocity    int8
	Probability int8
	Length      int8
	Legato      bool
	Slew        int8
	Spread      int8
	Micro       int8
}

// Resolve evaluates step i against the track and pattern parameters.
func (t *Track) Resolve(i int, p *PatternParams) ResolvedStep {
	s := &t.Steps[i]
	scale := p.Scale.Shift(s.Scale.Int())
	tone := Tone(clampTo[ToneRange](p.Root.Int() + scale.Degree(s.Tone.Int())))

	return ResolvedStep{
		On:          s.On,
		Tone:        tone,
		Velocity:    Sum(t.Params.Velocity, s.Velocity).Get(),
		Probability: Sum(t.Params.Probability, s.Probability).Get(),
		Length:      Sum(t.Params.StepLength, s.Length).Get(),
		Legato:      s.Legato,
		Slew:        Sum(t.Params.Slew, s.Slew).Get(),
		Spread:      s.Spread.Get(),
		Micro:       s.Micro.Get(),
	}
}
