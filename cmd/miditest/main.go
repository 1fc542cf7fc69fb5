package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"gridseq/grid"
	"gridseq/midi"
	"gridseq/tempo"
)

var match string

var rootCmd = &cobra.Command{
	Use:          "miditest",
	Short:        "Probe MIDI hardware used by gridseq",
	SilenceUsage: true,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find a Launchpad",
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := midi.OpenLaunchpad(match)
		if err != nil {
			return err
		}
		defer lp.Close()
		fmt.Printf("Launchpad detected: %s\n", lp.ID())
		return nil
	},
}

var ledsCmd = &cobra.Command{
	Use:   "leds",
	Short: "Paint a test pattern on the mirrored grid",
	RunE:  testLEDs,
}

var padsCmd = &cobra.Command{
	Use:   "pads",
	Short: "Print pads as panel addresses",
	RunE:  testPads,
}

var clockCmd = &cobra.Command{
	Use:   "clock [port]",
	Short: "Print 16th pulses derived from MIDI clock",
	Args:  cobra.ExactArgs(1),
	RunE:  testClock,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&match, "port", "p", "",
		"Launchpad port substring (default any Launchpad)")
	rootCmd.AddCommand(detectCmd, ledsCmd, padsCmd, clockCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// probePanel is a fixed LED grid that prints pad presses.
type probePanel struct {
	mu   sync.Mutex
	leds [grid.Rows]grid.LedRow
}

func (p *probePanel) Press(row grid.Row, col grid.Col) {
	fmt.Printf("press   row %d col %d\n", row, col)
}

func (p *probePanel) Release(row grid.Row, col grid.Col) {
	fmt.Printf("release row %d col %d\n", row, col)
}

func (p *probePanel) SetRotary(row grid.Row, col grid.Col, on bool) {
	fmt.Printf("encoder row %d col %d held=%v\n", row, col, on)
}

func (p *probePanel) Leds() [grid.Rows]grid.LedRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leds
}

func (p *probePanel) set(row, col int, c grid.BiLed) {
	p.mu.Lock()
	p.leds[row][col] = c
	p.mu.Unlock()
}

func testLEDs(cmd *cobra.Command, args []string) error {
	lp, err := midi.OpenLaunchpad(match)
	if err != nil {
		return err
	}
	defer lp.Close()

	panel := &probePanel{}
	mirror := midi.NewMirror(panel, lp)
	fmt.Println("Walking red then green across the grid...")
	for _, c := range []grid.BiLed{grid.Red, grid.Grn} {
		for r := 0; r < grid.Rows; r++ {
			for col := 0; col < grid.Cols; col++ {
				panel.set(r, col, c)
				if err := mirror.Flush(); err != nil {
					return err
				}
				time.Sleep(20 * time.Millisecond)
			}
		}
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	return nil
}

func testPads(cmd *cobra.Command, args []string) error {
	lp, err := midi.OpenLaunchpad(match)
	if err != nil {
		return err
	}
	defer lp.Close()

	fmt.Println("Press pads; Ctrl+C to exit.")
	ctx, cancel := interruptible()
	defer cancel()
	midi.NewMirror(&probePanel{}, lp).Run(ctx)
	return nil
}

// clockPrinter reports each pulse with the tempo it implies.
type clockPrinter struct {
	mu        sync.Mutex
	last      time.Time
	predictor tempo.Predictor
}

func (c *clockPrinter) PulseClock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	var next time.Duration
	if !c.last.IsZero() {
		next = c.predictor.Predict(now.Sub(c.last))
	}
	c.last = now
	if next > 0 {
		bpm := float64(time.Minute) / float64(next*4)
		fmt.Printf("[%s] clock  ~%.1f bpm\n", now.Format("15:04:05.000"), bpm)
		return
	}
	fmt.Printf("[%s] clock\n", now.Format("15:04:05.000"))
}

func (c *clockPrinter) PulseReset() {
	c.mu.Lock()
	c.last = time.Time{}
	c.predictor.Reset()
	c.mu.Unlock()
	fmt.Println("reset")
}

func testClock(cmd *cobra.Command, args []string) error {
	l := midi.NewClockListener(&clockPrinter{})
	if err := l.Open(args[0]); err != nil {
		return err
	}
	defer l.Close()

	fmt.Println("Waiting for MIDI clock; Ctrl+C to exit.")
	ctx, cancel := interruptible()
	defer cancel()
	<-ctx.Done()
	return nil
}
