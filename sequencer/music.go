package sequencer

import "strconv"

// Tone is a semitone number: 0 is C0, 1 C#0, 2 D0 and so on.
type Tone int8

// MiddleC is C4.
const MiddleC Tone = 48

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func (t Tone) String() string {
	n := int(t)
	oct := n / 12
	idx := n % 12
	if idx < 0 {
		idx += 12
		oct--
	}
	return noteNames[idx] + strconv.Itoa(oct)
}

// Scale (or mode)
type Scale uint8

const (
	Major    Scale = iota // Ionian
	Lydian                // C D E F# G A B
	Seven                 // Mixolydian
	Sus                   // Mixolydian, suspended 4
	Minor                 // Natural minor, Aeolian
	Dorian                // Jazz minor
	Harmonic              // Harmonic minor
	Phrygian              // C Db Eb F G Ab Bb
	Spanish               // Phrygian dominant
	Dim                   // Diminished, eight tones
	Chromatic

	NumScales = iota
)

var scaleTones = [NumScales][]int8{
	Major:     {0, 2, 4, 5, 7, 9, 11},
	Lydian:    {0, 2, 4, 6, 7, 9, 11},
	Seven:     {0, 2, 4, 5, 7, 9, 10},
	Sus:       {0, 2, 5, 7, 9, 10},
	Minor:     {0, 2, 3, 5, 7, 8, 10},
	Dorian:    {0, 2, 3, 5, 7, 9, 10},
	Harmonic:  {0, 2, 3, 5, 7, 8, 11},
	Phrygian:  {0, 1, 3, 5, 7, 8, 10},
	Spanish:   {0, 1, 4, 5, 7, 8, 10},
	Dim:       {0, 2, 3, 5, 6, 8, 9, 11},
	Chromatic: {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var scaleNames = [NumScales]string{
	"Major", "Lydian", "Seven", "Sus", "Minor", "Dorian",
	"Harmonic", "Phrygian", "Spanish", "Dim", "Chromatic",
}

func (s Scale) String() string {
	if int(s) < NumScales {
		return scaleNames[s]
	}
	return "Scale(?)"
}

// Tones returns the semitone offsets from the root, ascending. The slice is
// shared and must not be modified.
func (s Scale) Tones() []int8 {
	return scaleTones[s]
}

// Degree maps a scale index to semitones above the root. Indices past the
// end of the scale continue into the next octave, negative ones go down.
func (s Scale) Degree(n int) int {
	tones := scaleTones[s]
	l := len(tones)
	oct := n / l
	idx := n % l
	if idx < 0 {
		idx += l
		oct--
	}
	return int(tones[idx]) + 12*oct
}

// Add moves to a neighbouring scale, stopping at the first and last.
func (s *Scale) Add(delta int8) {
	*s = s.Shift(int(delta))
}

// Shift returns the scale delta positions away, clamped.
func (s Scale) Shift(delta int) Scale {
	return Scale(clamp(int(s)+delta, 0, NumScales-1))
}
