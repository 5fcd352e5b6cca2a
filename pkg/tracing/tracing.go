// Package tracing records simulation runs as OpenTelemetry spans written
// by the stdout exporter.
package tracing

import (
	"context"
	"errors"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/poltergeist/mlfq/pkg/types"
)

const instrumentation = "github.com/poltergeist/mlfq"

// Tracer owns a tracer provider and its exporter. A nil *Tracer is valid
// and records nothing.
type Tracer struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
	closer io.Closer
}

// New creates a tracer exporting finished spans to w.
func New(serviceName, serviceVersion string, w io.Writer) (*Tracer, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	return NewWithExporter(serviceName, serviceVersion, exporter)
}

// NewWithExporter creates a tracer over any span exporter.
func NewWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) (*Tracer, error) {
	if exporter == nil {
		return nil, errors.New("nil span exporter")
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	return &Tracer{tp: tp, tracer: tp.Tracer(instrumentation)}, nil
}

// Open creates the tracer described by cfg. It returns nil when tracing is
// off. Output "stdout" or empty writes to standard output, anything else
// names a file that is truncated.
func Open(cfg *types.TracingConfig, serviceVersion string) (*Tracer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	var w io.Writer = os.Stdout
	var closer io.Closer
	if cfg.Output != "" && cfg.Output != "stdout" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}

	t, err := New("mlfqsim", serviceVersion, w)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	t.closer = closer
	return t, nil
}

// Start opens a span. Without a tracer the returned span is nil, which is
// safe to use.
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, *Span) {
	if t == nil {
		return ctx, nil
	}
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, &Span{span: span}
}

// Shutdown flushes pending spans and releases the output.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	err := t.tp.Shutdown(ctx)
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// WithAttributes attaches string attributes to the span.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	s.span.SetAttributes(kv...)
	return s
}

// SetInt attaches one integer attribute.
func (s *Span) SetInt(key string, v int64) {
	if s == nil {
		return
	}
	s.span.SetAttributes(attribute.Int64(key, v))
}

// AddEvent records a point-in-time event with integer attributes.
func (s *Span) AddEvent(name string, attrs map[string]int64) {
	if s == nil {
		return
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.Int64(k, v))
	}
	s.span.AddEvent(name, trace.WithAttributes(kv...))
}

// SetStatus records err on the span, or an OK status when err is nil.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// End finishes the span.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.span.End()
}

// EndSpan sets the status from err and finishes the span.
func EndSpan(s *Span, err error) {
	s.SetStatus(err)
	s.End()
}
