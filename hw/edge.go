package hw

import (
	"time"

	"github.com/pkg/errors"

	"gridseq/clock"
)

// Edge is a level change with the instant of the sample that revealed it.
type Edge struct {
	Rising bool
	At     clock.Instant
}

// IsRising reports a low-to-high transition.
func (e Edge) IsRising() bool { return e.Rising }

// IsFalling reports a high-to-low transition.
func (e Edge) IsFalling() bool { return !e.Rising }

// Sampler yields a level for an instant.
type Sampler interface {
	Sample(now clock.Instant) (bool, error)
}

// Direct samples an Input with no conditioning.
type Direct struct {
	In Input
}

func (d Direct) Sample(clock.Instant) (bool, error) {
	return d.In.IsHigh()
}

// Debounce only reports a new level once it has been stable for Min.
type Debounce struct {
	src     Sampler
	min     time.Duration
	level   bool
	pending bool
	since   clock.Instant
	primed  bool
}

// NewDebounce wraps src.
func NewDebounce(src Sampler, min time.Duration) *Debounce {
	return &Debounce{src: src, min: min}
}

func (d *Debounce) Sample(now clock.Instant) (bool, error) {
	raw, err := d.src.Sample(now)
	if err != nil {
		return d.level, err
	}
	if !d.primed {
		d.primed = true
		d.level, d.pending, d.since = raw, raw, now
		return d.level, nil
	}
	if raw != d.pending {
		d.pending = raw
		d.since = now
	}
	if d.pending != d.level && now.Sub(d.since) >= d.min {
		d.level = d.pending
	}
	return d.level, nil
}

// EdgeInput reports edges of a Sampler. The first sample sets the baseline
// level and never produces an edge.
type EdgeInput struct {
	src    Sampler
	level  bool
	primed bool
}

// NewEdge wraps src.
func NewEdge(src Sampler) *EdgeInput {
	return &EdgeInput{src: src}
}

// Tick samples and returns the edge, if the level changed.
func (e *EdgeInput) Tick(now clock.Instant) (Edge, bool, error) {
	v, err := e.src.Sample(now)
	if err != nil {
		return Edge{}, false, errors.Wrap(err, "sample edge input")
	}
	if !e.primed {
		e.primed = true
		e.level = v
		return Edge{}, false, nil
	}
	if v == e.level {
		return Edge{}, false, nil
	}
	e.level = v
	return Edge{Rising: v, At: now}, true, nil
}

// Level is the last sampled level.
func (e *EdgeInput) Level() bool {
	return e.level
}
