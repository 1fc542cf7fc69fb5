package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gridseq/config"
	"gridseq/debug"
	"gridseq/midi"
	"gridseq/runloop"
	"gridseq/theme"
	"gridseq/tui"
)

var flags struct {
	config   string
	logLevel string
	runFor   time.Duration
	write    bool
}

var rootCmd = &cobra.Command{
	Use:   "gridseq",
	Short: "A step sequencer on a multiplexed LED button grid",
	Long: `gridseq runs the sequencer core of a 5x8 bi-color LED button grid with
encoders, scanning virtual lines on the host.

The front panel is shown in the terminal and can be mirrored on a Launchpad.
The clock comes from an internal metronome or an external MIDI clock.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run with the terminal front panel",
	RunE:  runTUI,
}

var headlessCmd = &cobra.Command{
	Use:   "headless",
	Short: "Run the loop without a front panel, logging to stderr",
	RunE:  runHeadless,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	RunE:  listPorts,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective config",
	RunE:  showConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "",
		"Config file (default ~/.config/gridseq/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flags.logLevel, "log-level", "l", "",
		"Log level, overrides the config (trace, debug, info, warn)")
	headlessCmd.Flags().DurationVar(&flags.runFor, "for", 0,
		"Stop after this long (0 runs until interrupted)")
	configCmd.Flags().BoolVarP(&flags.write, "write", "w", false,
		"Write the effective config to the config file")

	rootCmd.AddCommand(runCmd, headlessCmd, portsCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.config != "" {
		cfg, err = config.LoadFrom(flags.config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := debug.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		if logPath, err = config.DefaultLogPath(); err != nil {
			return err
		}
	}
	if err := debug.Enable(logPath); err != nil {
		return err
	}
	defer debug.Disable()

	palette := theme.Plasma()
	if cfg.UI.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.UI.Palette); err != nil {
			return err
		}
	}

	feed := &tui.Feed{}
	a, err := newApp(cfg, feed.Set)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.startPeripherals(ctx); err != nil {
		return err
	}

	m := tui.NewModel(a.panel, a.metronome, a.devices, feed, theme.New(palette))
	p := tea.NewProgram(m, tea.WithAltScreen())

	loopDone := make(chan error, 1)
	go func() {
		err := a.runLoop(ctx)
		if err != nil {
			p.Send(tui.LoopErrMsg{Err: err})
		}
		loopDone <- err
	}()

	final, err := p.Run()
	cancel()
	loopErr := <-loopDone
	a.wait()
	if err != nil {
		return err
	}
	if fm, ok := final.(tui.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return loopErr
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Log.File != "" {
		if err := debug.Enable(cfg.Log.File); err != nil {
			return err
		}
		defer debug.Disable()
	}

	var last runloop.Status
	a, err := newApp(cfg, func(s runloop.Status) {
		if s.Playhead != last.Playhead || s.Mode != last.Mode {
			debug.Trace("status", "step %d mode %v ticks %d", s.Playhead, s.Mode, s.ClockCount)
		}
		last = s
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if flags.runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.runFor)
		defer cancel()
	}

	if err := a.startPeripherals(ctx); err != nil {
		return err
	}
	err = a.runLoop(ctx)
	a.wait()
	debug.Log("headless", "done after %d ticks", last.ClockCount)
	return err
}

func listPorts(cmd *cobra.Command, args []string) error {
	ins, outs, err := midi.Ports()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Fprintf(out, "  %d: %s\n", i, p)
	}
	fmt.Fprintln(out, "\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Fprintf(out, "  %d: %s\n", i, p)
	}
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	cmd.OutOrStdout().Write(data)

	if !flags.write {
		return nil
	}
	if flags.config != "" {
		err = cfg.SaveTo(flags.config)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "written")
	return nil
}
