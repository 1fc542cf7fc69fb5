package hw

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"gridseq/clock"
)

type fakeLevel struct {
	high bool
	err  error
}

func (f *fakeLevel) IsHigh() (bool, error) { return f.high, f.err }

type fakePhases struct {
	seq []uint8
	i   int
}

func (f *fakePhases) Phases() (bool, bool, error) {
	s := f.seq[f.i]
	if f.i < len(f.seq)-1 {
		f.i++
	}
	return s&2 != 0, s&1 != 0, nil
}

func TestEdgeInputReportsChangesOnly(t *testing.T) {
	in := &fakeLevel{}
	e := NewEdge(Direct{In: in})

	if _, ok, _ := e.Tick(0); ok {
		t.Fatal("first sample must not produce an edge")
	}
	in.high = true
	edge, ok, err := e.Tick(10)
	if err != nil || !ok || !edge.IsRising() || edge.At != 10 {
		t.Fatalf("expected rising edge at 10, got %+v ok=%v err=%v", edge, ok, err)
	}
	if _, ok, _ := e.Tick(20); ok {
		t.Error("steady level must not produce an edge")
	}
	in.high = false
	edge, ok, _ = e.Tick(30)
	if !ok || !edge.IsFalling() {
		t.Errorf("expected falling edge, got %+v ok=%v", edge, ok)
	}
}

func TestEdgeInputPropagatesReadFailure(t *testing.T) {
	boom := errors.New("stuck pin")
	e := NewEdge(Direct{In: &fakeLevel{err: boom}})
	if _, _, err := e.Tick(0); errors.Cause(err) != boom {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestDebounceRequiresStableLevel(t *testing.T) {
	in := &fakeLevel{}
	d := NewDebounce(Direct{In: in}, 2*time.Millisecond)
	at := func(us int) clock.Instant { return clock.Instant(us) }

	d.Sample(at(0))
	in.high = true
	if v, _ := d.Sample(at(500)); v {
		t.Fatal("level changed before debounce period")
	}
	in.high = false // bounce
	d.Sample(at(800))
	in.high = true
	d.Sample(at(1000))
	if v, _ := d.Sample(at(2900)); v {
		t.Fatal("bounce must restart the debounce period")
	}
	if v, _ := d.Sample(at(3000)); !v {
		t.Fatal("expected high after stable period")
	}
}

func TestQuadratureDetents(t *testing.T) {
	fwd := []uint8{0, 1, 3, 2, 0, 1, 3, 2, 0}
	q := NewQuadrature(&fakePhases{seq: fwd}, 4)

	var total int
	for range fwd {
		d, err := q.Tick()
		if err != nil {
			t.Fatal(err)
		}
		total += int(d)
	}
	if total != 2 {
		t.Errorf("expected 2 detents forward, got %d", total)
	}

	rev := []uint8{0, 2, 3, 1, 0}
	q = NewQuadrature(&fakePhases{seq: rev}, 4)
	total = 0
	for range rev {
		d, _ := q.Tick()
		total += int(d)
	}
	if total != -1 {
		t.Errorf("expected 1 detent backward, got %d", total)
	}
}

func TestQuadratureIgnoresInvalidJump(t *testing.T) {
	q := NewQuadrature(&fakePhases{seq: []uint8{0, 3, 0, 3, 0}}, 1)
	for i := 0; i < 5; i++ {
		if d, _ := q.Tick(); d != 0 {
			t.Fatalf("invalid transition produced delta %d", d)
		}
	}
}

type stillPhases struct{}

func (stillPhases) Phases() (bool, bool, error) { return true, false, nil }

func TestQuadratureClampsStepsPerDetent(t *testing.T) {
	q := NewQuadrature(stillPhases{}, 200)
	for i := 0; i < 10; i++ {
		if d, _ := q.Tick(); d != 0 {
			t.Fatalf("tick %d: encoder at rest moved %d", i, d)
		}
	}

	// a full turn of the clamped detent size reports exactly one detent
	seq := []uint8{0}
	for i := 0; i < MaxStepsPerDetent; i++ {
		seq = append(seq, GrayForward[(i+1)%4])
	}
	q = NewQuadrature(&fakePhases{seq: seq}, 1000)
	var total int
	for range seq {
		d, _ := q.Tick()
		total += int(d)
	}
	if total != 1 {
		t.Errorf("expected 1 detent after %d transitions, got %d", MaxStepsPerDetent, total)
	}
}
