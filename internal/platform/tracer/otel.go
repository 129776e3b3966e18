package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer obtained from the global provider.
const InstrumentationName = "identrust"

type otelTracer struct {
	tracer trace.Tracer
}

// NewOTel traces through the given providers' tracers, or through the
// global provider when none is passed.
func NewOTel(tracers ...trace.Tracer) Tracer {
	if len(tracers) > 0 && tracers[0] != nil {
		return otelTracer{tracer: tracers[0]}
	}
	return otelTracer{tracer: otel.Tracer(InstrumentationName)}
}

// NewNoop discards every span.
func NewNoop() Tracer {
	return otelTracer{tracer: noop.NewTracerProvider().Tracer(InstrumentationName)}
}

func (t otelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, otelSpan{span}
}

type otelSpan struct{ trace.Span }

func (s otelSpan) End(err error) {
	if err != nil {
		s.Span.RecordError(err)
		s.Span.SetStatus(codes.Error, err.Error())
	}
	s.Span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) { s.Span.SetAttributes(attrs...) }

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(attrs...))
}
