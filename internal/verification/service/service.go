// Package service runs the simulated verifier: it waits out a fixed delay,
// returns a canned outcome and appends it to the caller's verification log.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"identrust/internal/audit"
	"identrust/internal/entity"
	"identrust/internal/platform/metrics"
	"identrust/internal/platform/tracer"
	"identrust/internal/verification/models"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/requestcontext"
	"identrust/pkg/validation"
)

// Store is the append side of the verification log plus listing.
type Store interface {
	Create(ctx context.Context, rec *models.Verification) error
	List(ctx context.Context, opts entity.ListOptions) ([]*models.Verification, error)
}

const (
	DefaultScanDelay   = 2 * time.Second
	DefaultManualDelay = 1500 * time.Millisecond

	// DefaultRecentLimit is how many log entries the verifier screen shows.
	DefaultRecentLimit = 5
)

type Option func(*Service)

type Service struct {
	store       Store
	auditor     *audit.Publisher
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
	logger      *slog.Logger
	scanDelay   time.Duration
	manualDelay time.Duration
	now         func() time.Time
}

func New(store Store, auditor *audit.Publisher, opts ...Option) *Service {
	s := &Service{
		store:       store,
		auditor:     auditor,
		tracer:      tracer.NewNoop(),
		logger:      slog.Default(),
		scanDelay:   DefaultScanDelay,
		manualDelay: DefaultManualDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithDelays overrides the simulated processing time. Zero disables a delay.
func WithDelays(scan, manual time.Duration) Option {
	return func(s *Service) {
		s.scanDelay = max(scan, 0)
		s.manualDelay = max(manual, 0)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Scan simulates reading a QR code. The location is the caller's device
// when the request identified one.
func (s *Service) Scan(ctx context.Context) (*models.Outcome, error) {
	outcome := models.ScanOutcome()
	if device := requestcontext.DeviceName(ctx); device != "" {
		outcome.Location = device
	}
	return s.verify(ctx, s.scanDelay, outcome, models.ScanCredentialID, models.TypeAgeVerification)
}

// Manual simulates checking a typed-in verification hash. The hash is
// recorded as given; it is not looked up.
func (s *Service) Manual(ctx context.Context, hash string) (*models.Outcome, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "hash is required")
	}
	if err := validation.CheckStringLength("hash", hash, validation.MaxHashLength); err != nil {
		return nil, err
	}
	return s.verify(ctx, s.manualDelay, models.ManualOutcome(), hash, models.TypeQualificationCheck)
}

func (s *Service) verify(ctx context.Context, delay time.Duration, outcome models.Outcome, credentialID string, vType models.Type) (*models.Outcome, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}

	start := s.now()
	if err := s.wait(ctx, outcome.VerificationMethod, delay); err != nil {
		return nil, err
	}

	rec := outcome.Record(credentialID, vType)
	rec.CreatedBy = owner
	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "failed to record verification",
			"error", err,
			"method", outcome.VerificationMethod,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification")
	}
	outcome.Verification = rec

	method, result := string(outcome.VerificationMethod), string(outcome.VerificationResult)
	s.metrics.IncrementVerifications(method, result)
	s.metrics.ObserveVerificationLatency(method, s.now().Sub(start).Seconds())
	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, audit.Event{
			Action:     audit.ActionVerificationRecorded,
			EntityType: "verification",
			EntityID:   rec.ID,
			Attributes: map[string]string{
				"method":            method,
				"result":            result,
				"verification_type": string(vType),
			},
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
		}
	}
	return &outcome, nil
}

func (s *Service) wait(ctx context.Context, method models.Method, d time.Duration) (err error) {
	if d <= 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerifyDelay,
		tracer.String(tracer.AttrMethod, string(method)),
		tracer.Duration(tracer.AttrDelay, d),
	)
	defer func() { span.End(err) }()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "verification cancelled")
	}
}

// Recent lists the caller's newest verifications. limit <= 0 means
// DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.Verification, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out, err := s.store.List(ctx, entity.ListOptions{Sort: entity.NewestFirst, Limit: limit, CreatedBy: owner})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list verifications",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return out, nil
}
