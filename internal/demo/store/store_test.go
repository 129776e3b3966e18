package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"identrust/internal/demo/models"
	"identrust/internal/platform/circuit"
)

type sessionStore interface {
	Get(ctx context.Context, id string) (models.State, bool, error)
	Put(ctx context.Context, id string, state models.State) error
	Delete(ctx context.Context, id string) error
}

// SessionStoreSuite runs the same contract against every implementation.
type SessionStoreSuite struct {
	suite.Suite
	newStore func() sessionStore
}

func TestCacheStore(t *testing.T) {
	suite.Run(t, &SessionStoreSuite{newStore: func() sessionStore { return NewCache(time.Minute) }})
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	suite.Run(t, &SessionStoreSuite{newStore: func() sessionStore {
		srv.FlushAll()
		return NewRedis(client, time.Minute)
	}})
}

func TestResilientStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	suite.Run(t, &SessionStoreSuite{newStore: func() sessionStore {
		srv.FlushAll()
		return NewResilient(NewRedis(client, time.Minute), NewCache(time.Minute), circuit.New("demo_sessions"), discardLogger())
	}})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *SessionStoreSuite) TestMissing() {
	_, ok, err := s.newStore().Get(context.Background(), "nope")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *SessionStoreSuite) TestPutGetDelete() {
	ctx := context.Background()
	st := s.newStore()
	want := models.State{ScenarioID: "voting", Step: 3}

	s.Require().NoError(st.Put(ctx, "sess-1", want))
	got, ok, err := st.Get(ctx, "sess-1")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(want, got)

	s.Require().NoError(st.Delete(ctx, "sess-1"))
	_, ok, err = st.Get(ctx, "sess-1")
	s.Require().NoError(err)
	s.False(ok)
}

func TestRedisStoreExpires(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	st := NewRedis(client, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "sess-1", models.State{ScenarioID: "banking"}))
	assert.Equal(t, 30*time.Second, srv.TTL(KeyPrefix+"sess-1"))

	srv.FastForward(31 * time.Second)
	_, ok, err := st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreRejectsCorruptValue(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, srv.Set(KeyPrefix+"sess-1", "{not json"))

	_, _, err := NewRedis(client, time.Minute).Get(context.Background(), "sess-1")
	assert.Error(t, err)
}

func TestResilientStoreFallsBackDuringOutage(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	breaker := circuit.New("demo_sessions", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	st := NewResilient(NewRedis(client, time.Minute), NewCache(time.Minute), breaker, discardLogger())
	ctx := context.Background()

	want := models.State{ScenarioID: "healthcare", Step: 1}
	require.NoError(t, st.Put(ctx, "sess-1", want))

	srv.SetError("LOADING")

	// Below the threshold the primary error surfaces.
	_, _, err := st.Get(ctx, "sess-1")
	require.Error(t, err)
	assert.False(t, breaker.IsOpen())

	got, ok, err := st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, breaker.IsOpen())

	next := models.State{ScenarioID: "healthcare", Step: 2}
	require.NoError(t, st.Put(ctx, "sess-1", next))
	got, _, err = st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, next, got)

	srv.SetError("")
	_, _, err = st.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, breaker.IsOpen())
}
