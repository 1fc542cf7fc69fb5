package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	log     = newLogger(os.Stderr)
	file    *os.File
	mu      sync.Mutex
	enabled atomic.Bool
	runID   = uuid.NewString()
)

func init() {
	enabled.Store(true)
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return l
}

// RunID identifies this process in the logs.
func RunID() string {
	return runID
}

// SetLevel parses and applies a logrus level name ("info", "debug", "trace"...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// SetOutput redirects logging, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// Enable starts logging to path (truncating it), creating its directory.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if file != nil {
		file.Close()
	}
	file = f
	enabled.Store(true)
	log.SetOutput(f)
	entry("debug").Info("=== Debug logging started ===")
	return nil
}

// Disable stops logging and closes the log file, if any.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	log.SetOutput(io.Discard)
	enabled.Store(false)
}

func entry(category string) *logrus.Entry {
	return log.WithFields(logrus.Fields{"run": runID[:8], "category": category})
}

// Log writes an info message.
func Log(category, format string, args ...any) {
	if !enabled.Load() {
		return
	}
	entry(category).Infof(format, args...)
}

// Warn writes a warning.
func Warn(category, format string, args ...any) {
	if !enabled.Load() {
		return
	}
	entry(category).Warnf(format, args...)
}

// Trace writes a trace message. Cheap when trace is off.
func Trace(category, format string, args ...any) {
	if !enabled.Load() || !log.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	entry(category).Tracef(format, args...)
}

// LogEvery logs only every N calls (use for high-frequency events).
// n <= 1 logs every call.
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	if n <= 1 {
		Log(category, format, args...)
		return
	}
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, fmt.Sprintf("%s (every %d, count=%d)", format, n, count), args...)
	}
}
