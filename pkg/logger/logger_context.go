package logger

import (
	"context"

	rcontext "github.com/poltergeist/mlfq/pkg/context"
)

// ContextLogger is a Logger that can also pull run metadata from a
// context.Context.
type ContextLogger interface {
	Logger
	InfoContext(ctx context.Context, message string, fields ...Field)
	ErrorContext(ctx context.Context, message string, fields ...Field)
	WarnContext(ctx context.Context, message string, fields ...Field)
	DebugContext(ctx context.Context, message string, fields ...Field)
}

var _ ContextLogger = (*ComponentLogger)(nil)

// InfoContext logs an info message with the run fields of ctx.
func (l *ComponentLogger) InfoContext(ctx context.Context, message string, fields ...Field) {
	l.Info(message, append(contextFields(ctx), fields...)...)
}

// ErrorContext logs an error message with the run fields of ctx.
func (l *ComponentLogger) ErrorContext(ctx context.Context, message string, fields ...Field) {
	l.Error(message, append(contextFields(ctx), fields...)...)
}

// WarnContext logs a warning with the run fields of ctx.
func (l *ComponentLogger) WarnContext(ctx context.Context, message string, fields ...Field) {
	l.Warn(message, append(contextFields(ctx), fields...)...)
}

// DebugContext logs a debug message with the run fields of ctx.
func (l *ComponentLogger) DebugContext(ctx context.Context, message string, fields ...Field) {
	l.Debug(message, append(contextFields(ctx), fields...)...)
}

func contextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	var fields []Field
	if id := rcontext.RunID(ctx); id != "" {
		fields = append(fields, WithField("run_id", id))
	}
	if job := rcontext.Job(ctx); job != "" {
		fields = append(fields, WithField("job", job))
	}
	if op := rcontext.Operation(ctx); op != "" {
		fields = append(fields, WithField("operation", op))
	}
	if d := rcontext.Elapsed(ctx); d > 0 {
		fields = append(fields, WithField("elapsed_ms", d.Milliseconds()))
	}
	return fields
}

// WithContext returns a logger that adds the run fields of ctx to every
// entry.
func WithContext(ctx context.Context, log Logger) Logger {
	if ctx == nil {
		return log
	}
	return &contextualLogger{ctx: ctx, logger: log}
}

type contextualLogger struct {
	ctx    context.Context
	logger Logger
}

func (cl *contextualLogger) Info(message string, fields ...Field) {
	cl.logger.Info(message, append(contextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Error(message string, fields ...Field) {
	cl.logger.Error(message, append(contextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Warn(message string, fields ...Field) {
	cl.logger.Warn(message, append(contextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Debug(message string, fields ...Field) {
	cl.logger.Debug(message, append(contextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Success(message string, fields ...Field) {
	cl.logger.Success(message, append(contextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) WithComponent(component string) Logger {
	return &contextualLogger{ctx: cl.ctx, logger: cl.logger.WithComponent(component)}
}
