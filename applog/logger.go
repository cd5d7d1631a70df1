// Package applog appends timestamped lines to a log file and mirrors them to
// the console.
//
// Each line has the form
//
//	<timestamp> - <message>
//
// and is written to the file without buffering, so nothing is lost if the
// process exits before Close.
package applog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TimestampLayout is the layout of the timestamp that starts every line.
const TimestampLayout = "2006-01-02T15:04:05.000"

// ErrClosed is returned by Log after Close.
var ErrClosed = errors.New("logger is closed")

// Option configures a Logger.
type Option func(*Logger)

// WithConsole sets the writer lines are mirrored to. nil disables mirroring.
// Defaults to os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(l *Logger) {
		l.console = w
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// Logger is a line-oriented log sink safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	console io.Writer
	now     func() time.Time
	closed  bool
}

// Open opens path for appending, creating it if needed.
func Open(path string, opts ...Option) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		file:    f,
		console: os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Log appends msg to the file and the console.
// Write failures are returned rather than dropped.
func (l *Logger) Log(msg string) error {
	return l.write(l.now(), msg)
}

// Logf formats according to a format specifier and logs the result.
func (l *Logger) Logf(format string, args ...any) error {
	return l.Log(fmt.Sprintf(format, args...))
}

func (l *Logger) write(t time.Time, msg string) error {
	line := []byte(FormatLine(t, msg))

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	var errs []error
	if _, err := l.file.Write(line); err != nil {
		errs = append(errs, fmt.Errorf("failed to write log file: %w", err))
	}
	if l.console != nil {
		if _, err := l.console.Write(line); err != nil {
			errs = append(errs, fmt.Errorf("failed to write console: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close closes the log file. Calling Close more than once is a no-op.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// FormatLine renders a single log line including the trailing newline.
func FormatLine(t time.Time, msg string) string {
	return t.Format(TimestampLayout) + " - " + msg + "\n"
}
