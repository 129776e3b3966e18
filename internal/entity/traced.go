package entity

import (
	"context"

	"identrust/internal/platform/tracer"
)

// TracedStore wraps a Store with one span per call.
type TracedStore[T any] struct {
	next   Store[T]
	name   string
	tracer tracer.Tracer
}

// Traced decorates s. name labels spans, e.g. "credential".
func Traced[T any](name string, s Store[T], t tracer.Tracer) *TracedStore[T] {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &TracedStore[T]{next: s, name: name, tracer: t}
}

func (s *TracedStore[T]) Create(ctx context.Context, rec *T) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEntityCreate, tracer.String(tracer.AttrEntity, s.name))
	defer func() { span.End(err) }()
	return s.next.Create(ctx, rec)
}

func (s *TracedStore[T]) Get(ctx context.Context, id string) (rec *T, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEntityGet,
		tracer.String(tracer.AttrEntity, s.name),
		tracer.String(tracer.AttrEntityID, id),
	)
	defer func() { span.End(err) }()
	return s.next.Get(ctx, id)
}

func (s *TracedStore[T]) List(ctx context.Context, opts ListOptions) (out []*T, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEntityList,
		tracer.String(tracer.AttrEntity, s.name),
		tracer.String(tracer.AttrSort, opts.Sort.String()),
		tracer.Int(tracer.AttrLimit, opts.Limit),
	)
	defer func() {
		span.SetAttributes(tracer.Int(tracer.AttrResults, len(out)))
		span.End(err)
	}()
	return s.next.List(ctx, opts)
}

func (s *TracedStore[T]) Update(ctx context.Context, id string, patch Patch[T]) (rec *T, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEntityUpdate,
		tracer.String(tracer.AttrEntity, s.name),
		tracer.String(tracer.AttrEntityID, id),
	)
	defer func() { span.End(err) }()
	return s.next.Update(ctx, id, func(v *T) bool {
		changed := patch(v)
		span.SetAttributes(tracer.Bool(tracer.AttrChanged, changed))
		return changed
	})
}

var _ Store[struct{}] = (*TracedStore[struct{}])(nil)
