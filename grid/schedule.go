package grid

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"gridseq/clock"
)

// ErrSettleDelay is returned when the read settle delay does not fit inside
// a blank step.
var ErrSettleDelay = errors.New("settle delay must be shorter than every blank dwell")

// GridStep is one entry of the scan schedule.
type GridStep struct {
	Dwell time.Duration
	// Color and Row are set for a lit step; Color Off means a blank step
	// that arms a read of Col.
	Color BiLed
	Row   Row
	Col   Col
}

// Led lights row in color for dwell.
func Led(dwell time.Duration, color BiLed, row Row) GridStep {
	return GridStep{Dwell: dwell, Color: color, Row: row}
}

// Blank blanks the grid and reads col for dwell.
func Blank(dwell time.Duration, col Col) GridStep {
	return GridStep{Dwell: dwell, Col: col}
}

// IsRead reports a blank step.
func (s GridStep) IsRead() bool {
	return s.Color == Off
}

func (s GridStep) String() string {
	if s.IsRead() {
		return fmt.Sprintf("blank(col %d, %v)", s.Col, s.Dwell)
	}
	return fmt.Sprintf("led(row %d %v, %v)", s.Row, s.Color, s.Dwell)
}

// Timing holds the dwell times the schedules are built from.
type Timing struct {
	Red    time.Duration
	Green  time.Duration
	Blank  time.Duration
	Settle time.Duration
}

// DefaultTiming is the timing of the reference device.
var DefaultTiming = Timing{
	Red:    400 * time.Microsecond,
	Green:  90 * time.Microsecond,
	Blank:  400 * time.Microsecond,
	Settle: 50 * time.Microsecond,
}

// ReferenceSchedule is the nine step cycle of the reference device. It
// lights the two step rows and reads columns 0-4.
func ReferenceSchedule(t Timing) []GridStep {
	return []GridStep{
		Led(t.Red, Red, 0),
		Blank(t.Blank, 0),
		Led(t.Green, Grn, 0),
		Blank(t.Blank, 1),
		Led(t.Red, Red, 1),
		Blank(t.Blank, 2),
		Led(t.Green, Grn, 1),
		Blank(t.Blank/2, 3),
		Blank(t.Blank/2, 4),
	}
}

// FullSchedule lights every row in both colors and reads every column once
// per cycle.
func FullSchedule(t Timing) []GridStep {
	var steps []GridStep
	col := Col(0)
	for r := Row(0); r < Rows; r++ {
		for _, c := range []BiLed{Red, Grn} {
			dwell := t.Red
			if c == Grn {
				dwell = t.Green
			}
			steps = append(steps, Led(dwell, c, r))
			if col < Cols {
				steps = append(steps, Blank(t.Blank, col))
				col++
			}
		}
	}
	return steps
}

// Validate checks that a read can settle inside every blank step.
func Validate(steps []GridStep, settle time.Duration) error {
	if len(steps) == 0 {
		return errors.New("empty schedule")
	}
	for i, s := range steps {
		if s.Dwell <= 0 {
			return errors.Errorf("step %d (%v): dwell must be positive", i, s)
		}
		if s.IsRead() && settle >= s.Dwell {
			return errors.Wrapf(ErrSettleDelay, "step %d (%v): settle %v", i, s, settle)
		}
	}
	return nil
}

// CycleTime is the duration of one pass over the schedule.
func CycleTime(steps []GridStep) time.Duration {
	var total time.Duration
	for _, s := range steps {
		total += s.Dwell
	}
	return total
}

// Driver is the LED side of the scan.
type Driver interface {
	SetLeds(row Row, on BiLed, leds LedRow)
	SetCol(col Col)
}

// LedSource provides the colors of a row at the time it is lit.
type LedSource interface {
	LedRow(row Row) LedRow
}

// Reader performs one input scan pass of the driven column.
type Reader interface {
	ReadInput(now clock.Instant, col Col) error
}

// Scheduler steps through the schedule by elapsed time.
type Scheduler struct {
	steps  []GridStep
	settle time.Duration
	driver Driver
	reader Reader

	idx   int
	start clock.Instant

	readArmed bool
	readCol   Col
}

// NewScheduler validates the schedule and starts it at its first step.
func NewScheduler(steps []GridStep, settle time.Duration, driver Driver, reader Reader) (*Scheduler, error) {
	if err := Validate(steps, settle); err != nil {
		return nil, err
	}
	return &Scheduler{
		steps:  steps,
		settle: settle,
		driver: driver,
		reader: reader,
	}, nil
}

// Start restarts the cycle at now.
func (s *Scheduler) Start(now clock.Instant, leds LedSource) {
	s.idx = 0
	s.readArmed = false
	s.enter(now, leds)
}

// Tick advances the schedule if the current step has dwelled long enough,
// then reads input if a read is armed and the lines have settled.
func (s *Scheduler) Tick(now clock.Instant, leds LedSource) error {
	if now.Sub(s.start) >= s.steps[s.idx].Dwell {
		s.idx = (s.idx + 1) % len(s.steps)
		s.enter(now, leds)
	}

	if s.readArmed && now.Sub(s.start) > s.settle {
		s.readArmed = false
		if err := s.reader.ReadInput(now, s.readCol); err != nil {
			return errors.Wrapf(err, "read column %d", s.readCol)
		}
	}
	return nil
}

// Index is the position in the schedule.
func (s *Scheduler) Index() int {
	return s.idx
}

func (s *Scheduler) enter(now clock.Instant, leds LedSource) {
	s.start = now
	step := s.steps[s.idx]
	if step.IsRead() {
		s.driver.SetCol(step.Col)
		s.readCol = step.Col
		s.readArmed = true
		return
	}
	// a read that never settled is dropped
	s.readArmed = false
	s.driver.SetLeds(step.Row, step.Color, leds.LedRow(step.Row))
}
