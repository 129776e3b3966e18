// Package service drives demo walkthroughs for anonymous browser sessions.
package service

import (
	"context"
	"log/slog"

	"identrust/internal/demo/models"
	"identrust/internal/platform/metrics"
	dErrors "identrust/pkg/domain-errors"
	psync "identrust/pkg/platform/sync"
	"identrust/pkg/requestcontext"
)

// SessionStore keeps walkthrough state per session id. Entries expire.
type SessionStore interface {
	Get(ctx context.Context, id string) (models.State, bool, error)
	Put(ctx context.Context, id string, state models.State) error
	Delete(ctx context.Context, id string) error
}

type Option func(*Service)

type Service struct {
	sessions SessionStore
	locks    *psync.KeyedMutex
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(sessions SessionStore, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		locks:    psync.NewKeyedMutex(psync.DefaultShards),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Scenarios lists the available walkthroughs.
func (s *Service) Scenarios() []models.Scenario {
	return models.Scenarios
}

// Session renders the current state of session. Unknown or expired
// sessions are idle.
func (s *Service) Session(ctx context.Context, session string) (models.View, error) {
	state, err := s.load(ctx, session)
	if err != nil {
		return models.View{}, err
	}
	return state.Render(), nil
}

// Apply runs action a on the session and stores the result. scenarioID is
// only read by ActionStart. Returning to idle drops the stored session.
// Transitions on one session are serialized within the process.
func (s *Service) Apply(ctx context.Context, session string, a models.Action, scenarioID string) (models.View, error) {
	defer s.locks.Lock(session)()

	state, err := s.load(ctx, session)
	if err != nil {
		return models.View{}, err
	}
	next, err := state.Apply(a, scenarioID)
	if err != nil {
		return models.View{}, err
	}

	if next.Idle() {
		err = s.sessions.Delete(ctx, session)
	} else {
		err = s.sessions.Put(ctx, session, next)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store demo session",
			"error", err,
			"action", a,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.View{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store demo session")
	}

	if next != state {
		s.metrics.IncrementDemoTransitions(string(a))
	}
	s.logger.DebugContext(ctx, "demo transition",
		"action", a,
		"scenario", next.ScenarioID,
		"step", next.Step,
	)
	return next.Render(), nil
}

func (s *Service) load(ctx context.Context, session string) (models.State, error) {
	if session == "" {
		return models.State{}, dErrors.New(dErrors.CodeBadRequest, "missing demo session")
	}
	state, _, err := s.sessions.Get(ctx, session)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load demo session",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.State{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load demo session")
	}
	return state, nil
}
