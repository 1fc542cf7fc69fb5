package input

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"gridseq/clock"
	"gridseq/grid"
	"gridseq/hw"
	"gridseq/sequencer"
)

// fakePanel holds the level of every line. Switches are per column since
// the real lines only read the driven one.
type fakePanel struct {
	clock, reset bool
	switches     [grid.Rows][grid.Cols]bool
	rotary       [RotaryRows][grid.Cols]bool
	phase        [RotaryRows]uint8
	col          grid.Col
	fail         error
}

func (p *fakePanel) line(get func() bool) hw.Input {
	return hw.InputFunc(func() (bool, error) {
		if p.fail != nil {
			return false, p.fail
		}
		return get(), nil
	})
}

type phases struct {
	p   *fakePanel
	row int
}

func (ph phases) Phases() (bool, bool, error) {
	g := ph.p.phase[ph.row]
	return g&2 != 0, g&1 != 0, nil
}

func (p *fakePanel) lines() Lines {
	l := Lines{
		Clock: p.line(func() bool { return p.clock }),
		Reset: p.line(func() bool { return p.reset }),
	}
	for row := range l.Switches {
		l.Switches[row] = p.line(func() bool { return p.switches[row][p.col] })
	}
	for row := range l.RotarySwitches {
		l.RotarySwitches[row] = p.line(func() bool { return p.rotary[row][p.col] })
		l.Encoders[row] = phases{p: p, row: row}
	}
	return l
}

func newFake(capacity int) (*fakePanel, *AppInput, *sequencer.OperQueue) {
	p := &fakePanel{clock: true, reset: true}
	q := sequencer.NewOperQueue(capacity)
	return p, New(p.lines(), q, Options{StepsPerDetent: 4}), q
}

func (p *fakePanel) scan(t *testing.T, in *AppInput, now clock.Instant, col grid.Col) {
	t.Helper()
	p.col = col
	if err := in.ReadInput(now, col); err != nil {
		t.Fatal(err)
	}
}

func TestScanOrder(t *testing.T) {
	p, in, q := newFake(32)
	p.scan(t, in, 0, 4)

	p.reset = false
	p.clock = false
	p.switches[0][4] = true
	p.switches[4][4] = true
	p.rotary[0][4] = true
	p.rotary[1][4] = true
	p.scan(t, in, 100, 4)

	want := []sequencer.Oper{
		sequencer.Reset(),
		sequencer.Clock(0),
		sequencer.LedButton(4, 4, true),
		sequencer.LedButton(0, 4, true),
		sequencer.RotaryButton(1, 4, true),
		sequencer.RotaryButton(0, 4, true),
	}
	got := q.DrainUpTo(32, nil)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClockInterval(t *testing.T) {
	p, in, q := newFake(8)
	p.scan(t, in, 0, 0)

	pulse := func(at clock.Instant) {
		p.clock = false
		p.scan(t, in, at, 0)
		p.clock = true
		p.scan(t, in, at+10, 0)
	}
	pulse(1000)
	pulse(26000)
	pulse(51000)

	got := q.DrainUpTo(8, nil)
	want := []time.Duration{0, 25 * time.Millisecond, 25 * time.Millisecond}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i, op := range got {
		if op.Kind != sequencer.KindClock || op.Interval != want[i] {
			t.Errorf("pulse %d: %v, want interval %v", i, op, want[i])
		}
	}
}

func TestSwitchStateIsPerColumn(t *testing.T) {
	p, in, q := newFake(8)
	for col := grid.Col(0); col < grid.Cols; col++ {
		p.scan(t, in, 0, col)
	}

	p.switches[1][2] = true
	for col := grid.Col(0); col < grid.Cols; col++ {
		p.scan(t, in, 10, col)
	}
	got := q.DrainUpTo(8, nil)
	if len(got) != 1 || got[0] != sequencer.LedButton(1, 2, true) {
		t.Fatalf("got %v", got)
	}

	p.switches[1][2] = false
	p.scan(t, in, 20, 2)
	if got := q.DrainUpTo(8, nil); len(got) != 1 || got[0].Pressed {
		t.Fatalf("release: %v", got)
	}
}

func TestEncoderTurn(t *testing.T) {
	p, in, q := newFake(8)
	p.scan(t, in, 0, 3)
	for i := 1; i <= 4; i++ {
		p.phase[1] = hw.GrayForward[i%4]
		p.scan(t, in, clock.Instant(i), 3)
	}
	got := q.DrainUpTo(8, nil)
	if len(got) != 1 || got[0] != sequencer.RotaryEncoder(1, 3, 1) {
		t.Fatalf("got %v", got)
	}
}

func TestFullQueueDrops(t *testing.T) {
	p, in, q := newFake(2)
	p.scan(t, in, 0, 0)

	p.switches[0][0] = true
	p.switches[1][0] = true
	p.switches[2][0] = true
	p.scan(t, in, 10, 0)

	if q.Len() != 2 || in.Dropped() != 1 {
		t.Errorf("queued %d dropped %d", q.Len(), in.Dropped())
	}
}

func TestReadFailureIsReturned(t *testing.T) {
	p, in, _ := newFake(2)
	broken := errors.New("stuck line")
	p.fail = broken
	err := in.ReadInput(0, 0)
	if errors.Cause(err) != broken {
		t.Fatalf("expected line failure, got %v", err)
	}
}

func TestBadColumn(t *testing.T) {
	_, in, _ := newFake(2)
	if err := in.ReadInput(0, grid.Cols); errors.Cause(err) != sequencer.ErrBadAddress {
		t.Fatalf("expected ErrBadAddress, got %v", err)
	}
}
