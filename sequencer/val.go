package sequencer

// Range fixes the inclusive bounds of a Val at the type level. Implementations
// are empty structs so the zero value carries the bounds.
type Range interface {
	Min() int8
	Max() int8
}

// Val is an int8 kept within the bounds of R. Adding never fails: the sum
// saturates at the int8 limits and is then clamped into range.
type Val[R Range] struct {
	v int8
}

// NewVal returns v clamped into R.
func NewVal[R Range](v int8) Val[R] {
	return Val[R]{v: clampTo[R](int(v))}
}

// Add moves the value by delta.
func (x *Val[R]) Add(delta int8) {
	x.v = clampTo[R](int(x.v) + int(delta))
}

// Set stores v clamped into range.
func (x *Val[R]) Set(v int8) {
	x.v = clampTo[R](int(v))
}

// Get returns the value.
func (x Val[R]) Get() int8 {
	return x.v
}

// Int returns the value as an int.
func (x Val[R]) Int() int {
	return int(x.v)
}

// Sum adds b's value onto a, clamped into a's range.
func Sum[A, B Range](a Val[A], b Val[B]) Val[A] {
	a.Add(b.v)
	return a
}

func clampTo[R Range](n int) int8 {
	var r R
	// saturate to the int8 domain first
	n = clamp(n, -128, 127)
	return int8(clamp(n, int(r.Min()), int(r.Max())))
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Ranges used by the model.
type (
	// Percent is 0 - 100.
	Percent struct{}
	// Swing is 1 - 99, 50 is straight.
	Swing struct{}
	// Velocity is 0 - 127.
	Velocity struct{}
	// Offset100 is -100 - 100.
	Offset100 struct{}
	// Offset127 is -127 - 127.
	Offset127 struct{}
	// ToneRange is what the pitch output can represent, F#-3 to F8.
	ToneRange struct{}
	// ScaleShift moves a step to a neighbouring scale.
	ScaleShift struct{}
)

func (Percent) Min() int8    { return 0 }
func (Percent) Max() int8    { return 100 }
func (Swing) Min() int8      { return 1 }
func (Swing) Max() int8      { return 99 }
func (Velocity) Min() int8   { return 0 }
func (Velocity) Max() int8   { return 127 }
func (Offset100) Min() int8  { return -100 }
func (Offset100) Max() int8  { return 100 }
func (Offset127) Min() int8  { return -127 }
func (Offset127) Max() int8  { return 127 }
func (ToneRange) Min() int8  { return -30 }
func (ToneRange) Max() int8  { return 101 }
func (ScaleShift) Min() int8 { return -(NumScales - 1) }
func (ScaleShift) Max() int8 { return NumScales - 1 }
