package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// VerboseChecker gates Debug/Info output.
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger writes component-tagged log lines to stderr. Debug and Info
// are suppressed unless the verbose check passes; Warn and Error always
// print.
type Logger struct {
	component string
	verbose   VerboseChecker
	writer    io.Writer
}

// Field is one structured key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

func New(component string, verbose VerboseChecker) *Logger {
	return &Logger{component: component, verbose: verbose, writer: os.Stderr}
}

// NewWithCallback builds a logger whose verbosity is read lazily, so
// flag parsing can happen after logger construction.
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return New(component, verboseFunc(verboseCheck))
}

// WithComponent derives a logger for a sub-component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{component: component, verbose: l.verbose, writer: l.writer}
}

type verboseFunc func() bool

func (f verboseFunc) IsVerbose() bool {
	return f != nil && f()
}

func (l *Logger) isVerbose() bool {
	return l.verbose != nil && l.verbose.IsVerbose()
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.isVerbose() {
		l.write("DEBUG", msg, nil, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.isVerbose() {
		l.write("INFO", msg, nil, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.write("WARN", msg, nil, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.write("ERROR", msg, nil, args...)
}

func (l *Logger) DebugWithFields(msg string, fields []Field, args ...interface{}) {
	if l.isVerbose() {
		l.write("DEBUG", msg, fields, args...)
	}
}

func (l *Logger) InfoWithFields(msg string, fields []Field, args ...interface{}) {
	if l.isVerbose() {
		l.write("INFO", msg, fields, args...)
	}
}

func (l *Logger) write(level, msg string, fields []Field, args ...interface{}) {
	component := l.component
	if component == "" {
		component = "main"
	}

	var suffix string
	if len(fields) > 0 {
		pairs := make([]string, len(fields))
		for i, f := range fields {
			pairs[i] = fmt.Sprintf("%s=%v", f.Key, f.Value)
		}
		suffix = " [" + strings.Join(pairs, " ") + "]"
	}

	line := fmt.Sprintf("[%s] %s [%s] %s%s\n",
		time.Now().Format("15:04:05.000"), level, component,
		fmt.Sprintf(msg, args...), suffix)

	// Nowhere to report a failed stderr write.
	_, _ = fmt.Fprint(l.writer, line)
}

// Field constructors for the values this tool logs most.

func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Count(value int) Field {
	return Field{Key: "count", Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func Technique(id string) Field {
	return Field{Key: "technique", Value: id}
}

func Score(value float32) Field {
	return Field{Key: "score", Value: fmt.Sprintf("%.4f", value)}
}
