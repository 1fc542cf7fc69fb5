package sequencer

import "testing"

func TestValAddStaysInRange(t *testing.T) {
	deltas := []int8{-128, -127, -100, -1, 0, 1, 50, 99, 127}
	starts := []int8{-128, -50, 0, 1, 50, 99, 127}

	for _, start := range starts {
		for _, d := range deltas {
			v := NewVal[Swing](start)
			v.Add(d)
			if v.Get() < 1 || v.Get() > 99 {
				t.Errorf("swing %d%+d = %d out of range", start, d, v.Get())
			}

			o := NewVal[Offset127](start)
			o.Add(d)
			if o.Get() < -127 || o.Get() > 127 {
				t.Errorf("offset %d%+d = %d out of range", start, d, o.Get())
			}
		}
	}
}

func TestValAddZeroIsIdempotent(t *testing.T) {
	v := NewVal[Percent](42)
	for i := 0; i < 3; i++ {
		v.Add(0)
	}
	if v.Get() != 42 {
		t.Errorf("expected 42, got %d", v.Get())
	}
}

func TestValSaturatesBeforeClamping(t *testing.T) {
	v := NewVal[Offset127](120)
	v.Add(127) // 247 saturates to 127
	if v.Get() != 127 {
		t.Errorf("expected 127, got %d", v.Get())
	}
	v.Add(-128)
	v.Add(-128)
	if v.Get() != -127 {
		t.Errorf("expected -127, got %d", v.Get())
	}
}

func TestSumClampsIntoLeftRange(t *testing.T) {
	base := NewVal[Velocity](80)
	off := NewVal[Offset127](100)
	if got := Sum(base, off).Get(); got != 127 {
		t.Errorf("expected 127, got %d", got)
	}
	off.Set(-127)
	if got := Sum(base, off).Get(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if base.Get() != 80 {
		t.Error("Sum must not modify its operands")
	}
}
