package audit

import (
	"context"
	"log/slog"
	"sync"

	"identrust/internal/platform/privacy"
	"identrust/pkg/platform/middleware/requesttime"
	"identrust/pkg/requestcontext"
)

// Forwarder ships persisted events to an external sink such as Kafka.
type Forwarder interface {
	Forward(ctx context.Context, event Event) error
}

// DropCounter is told about events a full async buffer rejected.
type DropCounter interface {
	IncrementAuditDropped()
}

// Publisher appends audit events to a Store and optionally forwards them.
// In async mode Emit never blocks: events queue in a bounded buffer and a
// single goroutine drains it in order.
type Publisher struct {
	store     Store
	forwarder Forwarder
	dropped   DropCounter
	logger    *slog.Logger

	queue   chan Event
	drained sync.WaitGroup
	closing sync.Once
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events for background persistence.
// Sizes below one keep the publisher synchronous.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// WithForwarder hands every persisted event to f. Forwarding errors are
// logged only.
func WithForwarder(f Forwarder) PublisherOption {
	return func(p *Publisher) { p.forwarder = f }
}

func WithDropCounter(c DropCounter) PublisherOption {
	return func(p *Publisher) { p.dropped = c }
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.drained.Add(1)
		go p.drain()
	}
	return p
}

// Emit records event. Timestamp, owner and request id default to the
// values carried by ctx.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	event = stamp(ctx, event)
	if p.queue == nil {
		return p.write(ctx, event)
	}
	select {
	case p.queue <- event:
	default:
		if p.dropped != nil {
			p.dropped.IncrementAuditDropped()
		}
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"entity_id", event.EntityID,
		)
	}
	return nil
}

// List returns the owner's audit trail, oldest first.
func (p *Publisher) List(ctx context.Context, owner string) ([]Event, error) {
	return p.store.ListByOwner(ctx, owner)
}

// Close flushes queued events. It is safe to call more than once.
func (p *Publisher) Close() {
	if p.queue == nil {
		return
	}
	p.closing.Do(func() { close(p.queue) })
	p.drained.Wait()
}

func stamp(ctx context.Context, event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = requesttime.Now(ctx)
	}
	if event.Owner == "" {
		event.Owner = requestcontext.Owner(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return event
}

func (p *Publisher) drain() {
	defer p.drained.Done()
	for event := range p.queue {
		_ = p.write(context.Background(), event)
	}
}

func (p *Publisher) write(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err,
			"action", event.Action,
			"owner", privacy.MaskEmail(event.Owner),
		)
		return err
	}
	if p.forwarder == nil {
		return nil
	}
	if err := p.forwarder.Forward(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "failed to forward audit event",
			"error", err,
			"action", event.Action,
			"entity_id", event.EntityID,
		)
	}
	return nil
}
