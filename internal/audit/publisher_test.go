package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"identrust/pkg/platform/middleware/requesttime"
	"identrust/pkg/requestcontext"
)

type PublisherSuite struct {
	suite.Suite
	store  *InMemoryStore
	logger *slog.Logger
	ctx    context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	s.ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{Email: "ada@example.com"})
}

func (s *PublisherSuite) TestSyncEmitFillsContextFields() {
	p := NewPublisher(s.store, WithPublisherLogger(s.logger))

	s.Require().NoError(p.Emit(s.ctx, Event{Action: ActionCredentialIssued, EntityType: "credential", EntityID: "cred_1"}))

	events, err := p.List(context.Background(), "ada@example.com")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("req-42", events[0].RequestID)
	s.Equal("ada@example.com", events[0].Owner)
	s.False(events[0].Timestamp.IsZero())
}

func (s *PublisherSuite) TestTimestampIsTheRequestTime() {
	pinned := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p := NewPublisher(s.store, WithPublisherLogger(s.logger))

	s.Require().NoError(p.Emit(requesttime.WithTime(s.ctx, pinned), Event{Action: ActionIdentityExported}))

	events, err := p.List(context.Background(), "ada@example.com")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(pinned, events[0].Timestamp)
}

func (s *PublisherSuite) TestCloseTwice() {
	p := NewPublisher(s.store, WithAsyncBuffer(2), WithPublisherLogger(s.logger))
	p.Close()
	s.NotPanics(p.Close)
}

func (s *PublisherSuite) TestAsyncEmitDrainsOnClose() {
	p := NewPublisher(s.store, WithAsyncBuffer(10), WithPublisherLogger(s.logger))
	for range 5 {
		s.Require().NoError(p.Emit(s.ctx, Event{Action: ActionVerificationRecorded}))
	}
	p.Close()

	events, err := s.store.ListByOwner(context.Background(), "ada@example.com")
	s.Require().NoError(err)
	s.Len(events, 5)
}

func (s *PublisherSuite) TestAsyncDropsWhenBufferFull() {
	blocking := &blockingStore{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	drops := &countingDrops{}
	p := NewPublisher(blocking, WithAsyncBuffer(1), WithPublisherLogger(s.logger), WithDropCounter(drops))

	s.Require().NoError(p.Emit(s.ctx, Event{Action: ActionVerificationRecorded}))
	<-blocking.entered // worker holds the first event
	s.Require().NoError(p.Emit(s.ctx, Event{Action: ActionVerificationRecorded}))
	s.Require().NoError(p.Emit(s.ctx, Event{Action: ActionVerificationRecorded}))

	close(blocking.release)
	p.Close()
	s.Equal(1, drops.count())
}

func (s *PublisherSuite) TestForwardsAfterPersisting() {
	fwd := &recordingForwarder{}
	p := NewPublisher(s.store, WithForwarder(fwd), WithPublisherLogger(s.logger))

	s.Require().NoError(p.Emit(s.ctx, Event{Action: ActionVerificationRecorded, EntityID: "ver_1"}))

	s.Require().Len(fwd.events, 1)
	s.Equal("ver_1", fwd.events[0].EntityID)
}

func (s *PublisherSuite) TestForwardFailureDoesNotFailEmit() {
	fwd := &recordingForwarder{err: errors.New("broker down")}
	p := NewPublisher(s.store, WithForwarder(fwd), WithPublisherLogger(s.logger))

	s.NoError(p.Emit(s.ctx, Event{Action: ActionVerificationRecorded}))
}

func TestInMemoryStoreCopiesAttributes(t *testing.T) {
	store := NewInMemoryStore()
	attrs := map[string]string{"method": "qr_scan"}
	require.NoError(t, store.Append(context.Background(), Event{Owner: "o", Attributes: attrs, Timestamp: time.Now()}))
	attrs["method"] = "tampered"

	events, err := store.ListByOwner(context.Background(), "o")
	require.NoError(t, err)
	events[0].Attributes["method"] = "tampered again"

	again, err := store.ListByOwner(context.Background(), "o")
	require.NoError(t, err)
	assert.Equal(t, "qr_scan", again[0].Attributes["method"])
}

type blockingStore struct {
	InMemoryStore
	once    sync.Once
	release chan struct{}
	entered chan struct{}
}

func (b *blockingStore) Append(ctx context.Context, e Event) error {
	b.once.Do(func() {
		b.entered <- struct{}{}
		<-b.release
	})
	return nil
}

func (b *blockingStore) ListByOwner(context.Context, string) ([]Event, error) { return nil, nil }

type countingDrops struct {
	mu sync.Mutex
	n  int
}

func (c *countingDrops) IncrementAuditDropped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *countingDrops) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type recordingForwarder struct {
	events []Event
	err    error
}

func (r *recordingForwarder) Forward(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}
