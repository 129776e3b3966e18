// Package tracer is a small tracing abstraction over OpenTelemetry.
// Stores and services depend on the Tracer interface; production wires the
// OTel adapter and tests use the no-op tracer.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Span represents an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanEntityList, tracer.String(tracer.AttrEntity, "credential"))
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is an OpenTelemetry key-value pair.
type Attribute = attribute.KeyValue

func String(key, value string) Attribute { return attribute.String(key, value) }

func Bool(key string, value bool) Attribute { return attribute.Bool(key, value) }

func Int(key string, value int) Attribute { return attribute.Int(key, value) }

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return attribute.Int64(key, value.Milliseconds())
}

// Span names.
const (
	SpanEntityCreate = "entity.create"
	SpanEntityGet    = "entity.get"
	SpanEntityList   = "entity.list"
	SpanEntityUpdate = "entity.update"
	SpanVerifyDelay  = "verification.simulated_delay"
)

// Attribute keys.
const (
	AttrEntity   = "entity"
	AttrEntityID = "entity.id"
	AttrSort     = "list.sort"
	AttrLimit    = "list.limit"
	AttrResults  = "list.results"
	AttrChanged  = "update.changed"
	AttrMethod   = "verification.method"
	AttrDelay    = "delay_ms"
)
