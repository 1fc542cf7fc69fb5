// Package runloop is the main loop: scan, dispatch, then timing.
package runloop

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"gridseq/clock"
	"gridseq/debug"
	"gridseq/grid"
	"gridseq/sequencer"
)

// Status is a copy of what a front end shows, taken after a batch.
type Status struct {
	Mode         sequencer.MachineState
	Playhead     int
	ClockCount   uint64
	Predicted    time.Duration
	SelectedPart int
	Tracks       sequencer.TrackSelection
	Params       sequencer.PatternParams
}

// Options for New.
type Options struct {
	// MaxConsume is how many operations are applied per iteration.
	MaxConsume int
	// Report is the loop timing report interval. Zero disables it.
	Report time.Duration
	// OnChange is called from the loop after a batch changed the state.
	OnChange func(Status)
}

// Loop owns the app state and drives everything else from one goroutine.
type Loop struct {
	clock     *clock.Clock
	scheduler *grid.Scheduler
	queue     *sequencer.OperQueue
	state     *sequencer.AppState
	opts      Options

	batch []sequencer.Oper

	loops      int
	lastReport clock.Instant
	started    bool
}

// New wires a loop. The scheduler reads into queue; the loop applies it to state.
func New(c *clock.Clock, s *grid.Scheduler, q *sequencer.OperQueue, state *sequencer.AppState, opts Options) *Loop {
	if opts.MaxConsume < 1 {
		opts.MaxConsume = 1
	}
	return &Loop{
		clock:     c,
		scheduler: s,
		queue:     q,
		state:     state,
		opts:      opts,
		batch:     make([]sequencer.Oper, 0, opts.MaxConsume),
	}
}

// State is the app state. Only touch it from the loop goroutine.
func (l *Loop) State() *sequencer.AppState {
	return l.state
}

// Start begins the scan cycle. Step calls it on first use.
func (l *Loop) Start() {
	l.clock.Tick()
	now := l.clock.Now()
	l.scheduler.Start(now, l.state)
	l.lastReport = now
	l.loops = 0
	l.started = true
}

// Step runs one iteration. An error is fatal to the loop.
func (l *Loop) Step() error {
	if !l.started {
		l.Start()
	}

	l.clock.Tick()
	now := l.clock.Now()

	if err := l.scheduler.Tick(now, l.state); err != nil {
		return errors.Wrap(err, "scan")
	}

	l.batch = l.queue.DrainUpTo(l.opts.MaxConsume, l.batch[:0])
	for _, op := range l.batch {
		if err := l.state.ApplyOper(op); err != nil {
			return errors.Wrapf(err, "apply %v", op)
		}
		l.state.Tick()
	}
	if len(l.batch) > 0 && l.opts.OnChange != nil {
		l.opts.OnChange(l.status())
	}

	l.loops++
	if l.opts.Report > 0 {
		if elapsed := now.Sub(l.lastReport); elapsed >= l.opts.Report {
			debug.Log("loop", "%d µs/loop, %d loops, %d queued",
				elapsed.Microseconds()/int64(l.loops), l.loops, l.queue.Len())
			l.lastReport = now
			l.loops = 0
		}
	}
	return nil
}

// Run steps until ctx is done or a step fails.
func (l *Loop) Run(ctx context.Context) error {
	debug.Log("loop", "started")
	defer debug.Log("loop", "stopped")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := l.Step(); err != nil {
			return err
		}
		runtime.Gosched()
	}
}

func (l *Loop) status() Status {
	s := l.state
	return Status{
		Mode:         s.Mode(),
		Playhead:     s.Playhead(),
		ClockCount:   s.ClockCount(),
		Predicted:    s.Predicted(),
		SelectedPart: s.SelectedPart(),
		Tracks:       s.SelectedTracks(),
		Params:       s.Params(),
	}
}
