package store

import (
	"context"
	"log/slog"

	"identrust/internal/demo/models"
	"identrust/internal/platform/circuit"
)

// Backend is a session store the resilient store can wrap.
type Backend interface {
	Get(ctx context.Context, id string) (models.State, bool, error)
	Put(ctx context.Context, id string, state models.State) error
	Delete(ctx context.Context, id string) error
}

// ResilientStore writes through to a primary (Redis) and a local fallback.
// Once the breaker opens, failed primary calls are served by the fallback
// so walkthroughs keep working while the primary is down.
type ResilientStore struct {
	primary  Backend
	fallback Backend
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewResilient(primary, fallback Backend, breaker *circuit.Breaker, logger *slog.Logger) *ResilientStore {
	return &ResilientStore{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

func (s *ResilientStore) Get(ctx context.Context, id string) (models.State, bool, error) {
	state, ok, err := s.primary.Get(ctx, id)
	if err == nil {
		s.succeeded(ctx)
		return state, ok, nil
	}
	if s.failed(ctx, err) {
		return s.fallback.Get(ctx, id)
	}
	return models.State{}, false, err
}

func (s *ResilientStore) Put(ctx context.Context, id string, state models.State) error {
	if err := s.fallback.Put(ctx, id, state); err != nil {
		return err
	}
	if err := s.primary.Put(ctx, id, state); err != nil {
		if s.failed(ctx, err) {
			return nil
		}
		return err
	}
	s.succeeded(ctx)
	return nil
}

func (s *ResilientStore) Delete(ctx context.Context, id string) error {
	if err := s.fallback.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.primary.Delete(ctx, id); err != nil {
		if s.failed(ctx, err) {
			return nil
		}
		return err
	}
	s.succeeded(ctx)
	return nil
}

func (s *ResilientStore) failed(ctx context.Context, err error) (useFallback bool) {
	useFallback, t := s.breaker.Failure()
	if t == circuit.Opened {
		s.logger.ErrorContext(ctx, "circuit breaker opened",
			"circuit", s.breaker.Name(),
			"error", err,
		)
	}
	if useFallback {
		s.logger.WarnContext(ctx, "serving demo session from fallback",
			"circuit", s.breaker.Name(),
			"error", err,
		)
	}
	return useFallback
}

func (s *ResilientStore) succeeded(ctx context.Context) {
	if s.breaker.Success() == circuit.Closed {
		s.logger.InfoContext(ctx, "circuit breaker closed", "circuit", s.breaker.Name())
	}
}
