package main

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"gridseq/clock"
	"gridseq/config"
	"gridseq/debug"
	"gridseq/grid"
	"gridseq/input"
	"gridseq/midi"
	"gridseq/runloop"
	"gridseq/sequencer"
	"gridseq/sim"
)

// app is the host build of the device: the simulated panel, the scan core
// and whatever drives the clock line.
type app struct {
	cfg *config.Config

	panel     *sim.Panel
	queue     *sequencer.OperQueue
	input     *input.AppInput
	loop      *runloop.Loop
	metronome *sim.Metronome
	midiClock *midi.ClockListener
	devices   *midi.DeviceManager

	wg sync.WaitGroup
}

func newApp(cfg *config.Config, onChange func(runloop.Status)) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	a.panel = sim.NewPanel(cfg.Input.StepsPerDetent)
	a.queue = sequencer.NewOperQueue(cfg.Queue.Capacity)
	a.input = input.New(a.panel.InputLines(), a.queue, input.Options{
		Debounce:       cfg.Input.Debounce,
		StepsPerDetent: cfg.Input.StepsPerDetent,
	})

	rows, cols := a.panel.LedLines()
	steps := cfg.Schedule()
	sched, err := grid.NewScheduler(steps, cfg.Scan.Settle, grid.NewLedGrid(rows, cols), a.input)
	if err != nil {
		return nil, err
	}

	state := sequencer.NewAppState(sequencer.Defaults{
		PatternLength: cfg.Pattern.Length,
		TrackLength:   cfg.Pattern.TrackLength,
	})
	a.loop = runloop.New(clock.New(cfg.Input.CounterBits, clock.System()), sched, a.queue, state, runloop.Options{
		MaxConsume: cfg.Queue.MaxConsume,
		Report:     cfg.Loop.Report,
		OnChange:   onChange,
	})

	switch cfg.Clock.Source {
	case config.ClockInternal:
		a.metronome = sim.NewMetronome(a.panel, cfg.Clock.BPM)
	case config.ClockMIDI:
		a.midiClock = midi.NewClockListener(a.panel)
	}
	if cfg.Launchpad.Enabled {
		a.devices = midi.NewDeviceManager(a.panel, cfg.Launchpad.Port)
	}

	debug.Log("boot", "run %s: %s layout, %d steps, cycle %v, queue %d/%d, clock %s",
		debug.RunID(), cfg.Scan.Layout, len(steps), grid.CycleTime(steps),
		cfg.Queue.Capacity, cfg.Queue.MaxConsume, cfg.Clock.Source)
	return a, nil
}

// startPeripherals starts the clock source and the Launchpad mirror.
func (a *app) startPeripherals(ctx context.Context) error {
	if a.midiClock != nil {
		if err := a.midiClock.Open(a.cfg.Clock.MIDIPort); err != nil {
			return errors.Wrap(err, "midi clock")
		}
	}
	if a.metronome != nil {
		a.spawn(func() { a.metronome.Run(ctx) })
	}
	if a.devices != nil {
		a.spawn(func() { a.devices.Run(ctx) })
	}
	return nil
}

// runLoop runs the main loop until ctx is done, then stops the
// peripherals.
func (a *app) runLoop(ctx context.Context) error {
	defer a.stop()
	err := a.loop.Run(ctx)
	if err != nil {
		debug.Warn("loop", "stopped: %v (dropped %d ops)", err, a.input.Dropped())
	}
	return err
}

func (a *app) stop() {
	if a.midiClock != nil {
		a.midiClock.Close()
	}
}

// wait blocks until the peripheral goroutines have exited.
func (a *app) wait() {
	a.wg.Wait()
}

func (a *app) spawn(f func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		f()
	}()
}
