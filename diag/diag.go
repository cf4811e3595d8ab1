// Package diag defines diagnostics reported by lexer, parser driver and grammar actions.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ava12/rbparse"
)

// Severity of a diagnostic.
type Severity int

const (
	// Warning is always shown.
	Warning Severity = iota
	// Verbose is a warning shown in verbose mode only.
	Verbose
	// Error makes the compilation fail, parsing continues.
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Verbose:
		return "verbose"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a single message tied to source position.
type Diagnostic struct {
	Severity Severity
	File     string
	Line     int
	Message  string
}

func (d Diagnostic) String() string {
	if d.File == "" && d.Line == 0 {
		return d.Severity.String() + ": " + d.Message
	}
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

// Sink receives diagnostics. Implementations must be safe for use by one compilation at a time.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d Diagnostic)

func (f SinkFunc) Report(d Diagnostic) {
	f(d)
}

type discard struct{}

func (discard) Report(Diagnostic) {}

// Discard drops all diagnostics.
var Discard Sink = discard{}

type multi []Sink

func (m multi) Report(d Diagnostic) {
	for _, s := range m {
		s.Report(d)
	}
}

// Multi returns a sink duplicating diagnostics to all given sinks.
func Multi(sinks ...Sink) Sink {
	result := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			result = append(result, s)
		}
	}
	return result
}

// Collector records diagnostics in order of arrival.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// All returns a copy of recorded diagnostics.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]Diagnostic, len(c.items))
	copy(result, c.items)
	return result
}

// Filter returns recorded diagnostics of given severity.
func (c *Collector) Filter(s Severity) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []Diagnostic
	for _, d := range c.items {
		if d.Severity == s {
			result = append(result, d)
		}
	}
	return result
}

// Messages returns messages of recorded diagnostics of given severity.
func (c *Collector) Messages(s Severity) []string {
	ds := c.Filter(s)
	result := make([]string, len(ds))
	for i, d := range ds {
		result[i] = d.Message
	}
	return result
}

func (c *Collector) HasErrors() bool {
	return len(c.Filter(Error)) > 0
}

func (c *Collector) Reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Logger is a sink writing diagnostics as structured log records.
type Logger struct {
	log *slog.Logger
}

// NewLogger creates a sink over l. Warnings are logged at Warn level,
// verbose warnings at Debug level, errors at Error level.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{l}
}

// With returns a sink adding attributes to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.log.With(args...)}
}

func (l *Logger) Report(d Diagnostic) {
	level := slog.LevelWarn
	switch d.Severity {
	case Verbose:
		level = slog.LevelDebug
	case Error:
		level = slog.LevelError
	}
	l.log.Log(context.Background(), level, d.Message, slog.String("file", d.File), slog.Int("line", d.Line))
}

// IrrecoverableError aborts the compilation.
type IrrecoverableError struct {
	Err *rbparse.Error
}

func (e *IrrecoverableError) Error() string {
	return e.Err.Message
}

func (e *IrrecoverableError) Unwrap() error {
	return e.Err
}
