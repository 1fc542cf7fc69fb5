package sequencer

import (
	"testing"

	"github.com/pkg/errors"

	"gridseq/grid"
)

func TestQueuePreservesOrder(t *testing.T) {
	q := NewOperQueue(4)
	q.Push(Reset())
	q.Push(Clock(0))
	q.Push(LedButton(4, 4, true))

	got := q.DrainUpTo(10, nil)
	want := []Kind{KindReset, KindClock, KindLedButton}
	if len(got) != len(want) {
		t.Fatalf("drained %v", got)
	}
	for i := range want {
		if got[i].Kind != want[i] {
			t.Errorf("op %d: %v, want kind %d", i, got[i], want[i])
		}
	}
}

func TestQueueDrainIsBounded(t *testing.T) {
	const maxConsume, k = 3, 4
	q := NewOperQueue(16)
	for i := 0; i < maxConsume+k; i++ {
		if err := q.Push(RotaryEncoder(0, grid.Col(i%8), 1)); err != nil {
			t.Fatal(err)
		}
	}

	got := q.DrainUpTo(maxConsume, nil)
	if len(got) != maxConsume {
		t.Errorf("drained %d, want %d", len(got), maxConsume)
	}
	if q.Len() != k {
		t.Errorf("left %d queued, want %d", q.Len(), k)
	}
	if got[0].Col != 0 || got[2].Col != 2 {
		t.Error("drain did not take the oldest")
	}
}

func TestQueueFullDropsNewest(t *testing.T) {
	q := NewOperQueue(2)
	q.Push(Clock(1))
	q.Push(Clock(2))
	if err := q.Push(Clock(3)); errors.Cause(err) != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	// wrap the ring
	q.DrainUpTo(1, nil)
	q.Push(Clock(4))
	got := q.DrainUpTo(5, nil)
	if len(got) != 2 || got[0].Interval != 2 || got[1].Interval != 4 {
		t.Errorf("unexpected contents %v", got)
	}
	if q.Cap() != 2 {
		t.Error("queue must not grow")
	}
}
