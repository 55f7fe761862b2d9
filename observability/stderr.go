package observability

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level filters which messages a text logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// textLogger writes "level: msg key=value ..." lines, one per call.
type textLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	bound  []Field
}

// NewTextLogger returns a Logger writing human-readable lines to out.
func NewTextLogger(out io.Writer, level Level) Logger {
	return &textLogger{mu: &sync.Mutex{}, out: out, level: level}
}

// NewStderrLogger returns a text logger on os.Stderr.
func NewStderrLogger(level Level) Logger { return NewTextLogger(os.Stderr, level) }

func (l *textLogger) log(level Level, name, msg string, fields []Field) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s: %s", name, msg)
	for _, f := range l.bound {
		fmt.Fprintf(l.out, " %s=%v", f.Key(), f.Value())
	}
	for _, f := range fields {
		fmt.Fprintf(l.out, " %s=%v", f.Key(), f.Value())
	}
	fmt.Fprintln(l.out)
}

func (l *textLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, "debug", msg, fields) }
func (l *textLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, "info", msg, fields) }
func (l *textLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, "warn", msg, fields) }
func (l *textLogger) Error(msg string, fields ...Field) { l.log(LevelError, "error", msg, fields) }

func (l *textLogger) With(fields ...Field) Logger {
	bound := make([]Field, 0, len(l.bound)+len(fields))
	bound = append(bound, l.bound...)
	bound = append(bound, fields...)
	return &textLogger{mu: l.mu, out: l.out, level: l.level, bound: bound}
}
