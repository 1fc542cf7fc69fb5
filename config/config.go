package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gridseq/grid"
	"gridseq/hw"
	"gridseq/sequencer"
)

// ErrInvalid is the cause of every Validate failure except a settle delay
// that does not fit the schedule, which keeps grid.ErrSettleDelay.
var ErrInvalid = errors.New("invalid config")

// Layout names a scan schedule.
type Layout string

const (
	LayoutFull      Layout = "full"
	LayoutReference Layout = "reference"
)

// ClockSource selects what pulses the clock line.
type ClockSource string

const (
	ClockInternal ClockSource = "internal"
	ClockMIDI     ClockSource = "midi"
	ClockNone     ClockSource = "none"
)

// ScanConfig is the grid scan timing.
type ScanConfig struct {
	Red    time.Duration `yaml:"red"`
	Green  time.Duration `yaml:"green"`
	Blank  time.Duration `yaml:"blank"`
	Settle time.Duration `yaml:"settle"`
	Layout Layout        `yaml:"layout"`
}

// QueueConfig sizes the operation queue.
type QueueConfig struct {
	Capacity   int `yaml:"capacity"`
	MaxConsume int `yaml:"max_consume"`
}

// LoopConfig tunes the main loop.
type LoopConfig struct {
	Report time.Duration `yaml:"report"`
}

// PatternConfig are the boot lengths.
type PatternConfig struct {
	Length      int `yaml:"length"`
	TrackLength int `yaml:"track_length"`
}

// InputConfig tunes the input conditioning.
type InputConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	StepsPerDetent int           `yaml:"steps_per_detent"`
	CounterBits    uint          `yaml:"counter_bits"`
}

// ClockConfig selects the clock source.
type ClockConfig struct {
	Source ClockSource `yaml:"source"`
	BPM    int         `yaml:"bpm"`
	// MIDIPort is matched as a substring of the input port name.
	MIDIPort string `yaml:"midi_port,omitempty"`
}

// LaunchpadConfig enables mirroring the panel on a Launchpad.
type LaunchpadConfig struct {
	Enabled bool `yaml:"enabled"`
	// Port is matched as a substring; empty matches any Launchpad.
	Port string `yaml:"port,omitempty"`
}

// LogConfig is the log level and, for the TUI, the log file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	// Palette is a GIMP palette file; empty uses the built-in one.
	Palette string `yaml:"palette,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Queue     QueueConfig     `yaml:"queue"`
	Loop      LoopConfig      `yaml:"loop"`
	Pattern   PatternConfig   `yaml:"pattern"`
	Input     InputConfig     `yaml:"input"`
	Clock     ClockConfig     `yaml:"clock"`
	Launchpad LaunchpadConfig `yaml:"launchpad"`
	Log       LogConfig       `yaml:"log"`
	UI        UIConfig        `yaml:"ui"`
}

// DefaultConfig returns the reference device settings.
func DefaultConfig() *Config {
	t := grid.DefaultTiming
	return &Config{
		Scan: ScanConfig{
			Red:    t.Red,
			Green:  t.Green,
			Blank:  t.Blank,
			Settle: t.Settle,
			Layout: LayoutFull,
		},
		Queue:   QueueConfig{Capacity: 32, MaxConsume: 3},
		Loop:    LoopConfig{Report: 1500 * time.Millisecond},
		Pattern: PatternConfig{Length: 16, TrackLength: sequencer.MaxSteps},
		Input: InputConfig{
			Debounce:       2 * time.Millisecond,
			StepsPerDetent: 4,
			CounterBits:    32,
		},
		Clock:     ClockConfig{Source: ClockInternal, BPM: 120},
		Launchpad: LaunchpadConfig{Enabled: true},
		Log:       LogConfig{Level: "info"},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "home directory")
	}
	return filepath.Join(home, ".config", "gridseq"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultLogPath is where the TUI logs when no file is configured.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debug.log"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults, so missing keys keep their
// default. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, errors.Wrap(err, "encode config")
}

// Timing is the scan timing.
func (c *Config) Timing() grid.Timing {
	return grid.Timing{
		Red:    c.Scan.Red,
		Green:  c.Scan.Green,
		Blank:  c.Scan.Blank,
		Settle: c.Scan.Settle,
	}
}

// Schedule builds the configured scan schedule.
func (c *Config) Schedule() []grid.GridStep {
	if c.Scan.Layout == LayoutReference {
		return grid.ReferenceSchedule(c.Timing())
	}
	return grid.FullSchedule(c.Timing())
}

// Validate checks the values the loop cannot run without.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.Wrapf(ErrInvalid, format, args...)
	}

	s := c.Scan
	if s.Red <= 0 || s.Green <= 0 || s.Blank <= 0 || s.Settle < 0 {
		return invalid("scan times must be positive")
	}
	switch s.Layout {
	case LayoutFull, LayoutReference:
	default:
		return invalid("unknown scan layout %q", s.Layout)
	}
	if err := grid.Validate(c.Schedule(), s.Settle); err != nil {
		return errors.Wrap(err, "scan")
	}

	q := c.Queue
	if q.Capacity < 1 {
		return invalid("queue capacity %d", q.Capacity)
	}
	if q.MaxConsume < 1 || q.MaxConsume > q.Capacity {
		return invalid("max_consume %d must be within 1-%d", q.MaxConsume, q.Capacity)
	}

	for _, n := range []int{c.Pattern.Length, c.Pattern.TrackLength} {
		if n < 1 || n > sequencer.MaxSteps {
			return invalid("length %d must be within 1-%d", n, sequencer.MaxSteps)
		}
	}

	if c.Input.StepsPerDetent < 1 || c.Input.StepsPerDetent > hw.MaxStepsPerDetent {
		return invalid("steps_per_detent %d must be within 1-%d", c.Input.StepsPerDetent, hw.MaxStepsPerDetent)
	}
	if c.Input.CounterBits < 1 || c.Input.CounterBits > 32 {
		return invalid("counter_bits %d must be within 1-32", c.Input.CounterBits)
	}
	if c.Loop.Report < 0 {
		return invalid("negative report interval")
	}

	switch c.Clock.Source {
	case ClockInternal:
		if c.Clock.BPM < 20 || c.Clock.BPM > 300 {
			return invalid("bpm %d must be within 20-300", c.Clock.BPM)
		}
	case ClockMIDI, ClockNone:
	default:
		return invalid("unknown clock source %q", c.Clock.Source)
	}
	return nil
}
