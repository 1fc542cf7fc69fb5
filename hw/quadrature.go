package hw

import (
	"github.com/pkg/errors"
)

// PhaseSource reads the two phase lines of an encoder in one sample.
type PhaseSource interface {
	Phases() (a, b bool, err error)
}

// PinPair reads phases from two Input lines.
type PinPair struct {
	A, B Input
}

func (p PinPair) Phases() (bool, bool, error) {
	a, err := p.A.IsHigh()
	if err != nil {
		return false, false, errors.Wrap(err, "phase a")
	}
	b, err := p.B.IsHigh()
	if err != nil {
		return false, false, errors.Wrap(err, "phase b")
	}
	return a, b, nil
}

// GrayForward is the phase order (a<<1|b) of a clockwise turn.
var GrayForward = [4]uint8{0, 1, 3, 2}

// transitions indexed by prev<<2|cur. Invalid (double) transitions count as zero.
var transitions = [16]int8{
	0, 1, -1, 0,
	-1, 0, 0, 1,
	1, 0, 0, -1,
	0, -1, 1, 0,
}

// MaxStepsPerDetent is the most transitions a detent may span.
const MaxStepsPerDetent = 127

// Quadrature decodes a phase pair into detent deltas.
type Quadrature struct {
	src       PhaseSource
	perDetent int
	state     uint8
	acc       int
	primed    bool
}

// NewQuadrature decodes src, reporting one detent per perDetent transitions.
// perDetent is clamped to 1-MaxStepsPerDetent.
func NewQuadrature(src PhaseSource, perDetent int) *Quadrature {
	perDetent = max(1, min(perDetent, MaxStepsPerDetent))
	return &Quadrature{src: src, perDetent: perDetent}
}

// Tick samples the phases and returns -1, 0 or +1 detents moved since the
// previous call.
func (q *Quadrature) Tick() (int8, error) {
	a, b, err := q.src.Phases()
	if err != nil {
		return 0, err
	}
	cur := uint8(0)
	if a {
		cur |= 2
	}
	if b {
		cur |= 1
	}
	if !q.primed {
		q.primed = true
		q.state = cur
		return 0, nil
	}

	q.acc += int(transitions[q.state<<2|cur])
	q.state = cur

	switch {
	case q.acc >= q.perDetent:
		q.acc = 0
		return 1, nil
	case q.acc <= -q.perDetent:
		q.acc = 0
		return -1, nil
	}
	return 0, nil
}
