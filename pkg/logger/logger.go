// Package logger provides structured, component-aware logging for the
// kernel and the simulator.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the logging interface used across the module.
type Logger interface {
	Info(message string, fields ...Field)
	Error(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Debug(message string, fields ...Field)
	Success(message string, fields ...Field)
	WithComponent(component string) Logger
}

// Field is a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// WithField creates a new field
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// ComponentLogger implements Logger on top of logrus and tags every entry
// with the component that produced it.
type ComponentLogger struct {
	logger    *logrus.Logger
	component string
}

// CustomFormatter renders one line per entry: time, level, component,
// message and the remaining fields sorted by key.
type CustomFormatter struct {
	TimestampFormat string
	DisableColors   bool
}

// Format implements logrus.Formatter
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelColor *color.Color
	var levelText string

	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = color.New(color.FgRed, color.Bold)
		levelText = "ERROR"
	case logrus.WarnLevel:
		levelColor = color.New(color.FgYellow, color.Bold)
		levelText = "WARN"
	case logrus.InfoLevel:
		levelColor = color.New(color.FgCyan)
		levelText = "INFO"
	case logrus.DebugLevel, logrus.TraceLevel:
		levelColor = color.New(color.FgWhite, color.Faint)
		levelText = "DEBUG"
	}
	if _, ok := entry.Data[successKey]; ok {
		levelColor = color.New(color.FgGreen)
		levelText = "OK"
	}

	var b strings.Builder
	b.WriteString("⏱  [")
	b.WriteString(entry.Time.Format(f.TimestampFormat))
	b.WriteString("] ")
	if f.DisableColors {
		b.WriteString(levelText)
	} else {
		b.WriteString(levelColor.Sprint(levelText))
	}
	b.WriteString(": ")

	if component, ok := entry.Data[componentKey]; ok {
		if f.DisableColors {
			fmt.Fprintf(&b, "[%v] ", component)
		} else {
			fmt.Fprintf(&b, "[%s] ", color.New(color.FgBlue).Sprint(component))
		}
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == componentKey || k == successKey {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, entry.Data[k])
		}
		fields := " {" + strings.Join(parts, ", ") + "}"
		if f.DisableColors {
			b.WriteString(fields)
		} else {
			b.WriteString(color.New(color.FgWhite, color.Faint).Sprint(fields))
		}
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

const (
	componentKey = "component"
	successKey   = "_success"
)

func newLogrus(logLevel string, disableColors bool, out io.Writer) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&CustomFormatter{
		TimestampFormat: "15:04:05.000",
		DisableColors:   disableColors,
	})
	log.SetOutput(out)
	return log
}

// CreateLogger creates a logger writing to stderr and, when logFile is set,
// appending to that file as well.
func CreateLogger(logFile string, logLevel string) Logger {
	var out io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stderr, file)
		}
	}
	return &ComponentLogger{logger: newLogrus(logLevel, false, out)}
}

// CreateLoggerWithOutput creates an uncolored logger writing to output.
// logFile is accepted for symmetry with CreateLogger and ignored.
func CreateLoggerWithOutput(logFile string, logLevel string, output io.Writer) Logger {
	if output == nil {
		output = io.Discard
	}
	return &ComponentLogger{logger: newLogrus(logLevel, true, output)}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	log := newLogrus("panic", true, io.Discard)
	return &ComponentLogger{logger: log}
}

// WithComponent returns a logger that tags entries with component.
func (l *ComponentLogger) WithComponent(component string) Logger {
	return &ComponentLogger{
		logger:    l.logger,
		component: component,
	}
}

func (l *ComponentLogger) entry(fields []Field) *logrus.Entry {
	data := make(logrus.Fields, len(fields)+1)
	if l.component != "" {
		data[componentKey] = l.component
	}
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return l.logger.WithFields(data)
}

// Info logs an info message
func (l *ComponentLogger) Info(message string, fields ...Field) {
	l.entry(fields).Info(message)
}

// Error logs an error message
func (l *ComponentLogger) Error(message string, fields ...Field) {
	l.entry(fields).Error(message)
}

// Warn logs a warning message
func (l *ComponentLogger) Warn(message string, fields ...Field) {
	l.entry(fields).Warn(message)
}

// Debug logs a debug message
func (l *ComponentLogger) Debug(message string, fields ...Field) {
	l.entry(fields).Debug(message)
}

// Success logs at info level with the success marker.
func (l *ComponentLogger) Success(message string, fields ...Field) {
	l.entry(fields).WithField(successKey, true).Info(message)
}

// Console prints user-facing CLI messages.
type Console struct {
	Out io.Writer
	Err io.Writer
}

// NewConsole returns a console on stdout and stderr.
func NewConsole() *Console {
	return &Console{Out: os.Stdout, Err: os.Stderr}
}

var consoleTag = "[mlfq]"

// Info prints an info message.
func (c *Console) Info(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, "%s %s\n", color.CyanString(consoleTag), fmt.Sprintf(format, args...))
}

// Error prints an error message to the error stream.
func (c *Console) Error(format string, args ...interface{}) {
	fmt.Fprintf(c.Err, "%s %s\n", color.RedString(consoleTag), fmt.Sprintf(format, args...))
}

// Warn prints a warning.
func (c *Console) Warn(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, "%s %s\n", color.YellowString(consoleTag), fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (c *Console) Success(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, "%s ✅ %s\n", color.GreenString(consoleTag), fmt.Sprintf(format, args...))
}
