// Package service manages the holder's identity settings and backup export.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"identrust/internal/audit"
	"identrust/internal/entity"
	"identrust/internal/identity/models"
	"identrust/internal/platform/metrics"
	"identrust/internal/sentinel"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/platform/middleware/requesttime"
	"identrust/pkg/requestcontext"
)

// Store persists identities, at most one per owner.
// Error Contract:
// - Create returns sentinel.ErrAlreadyUsed when the owner already has one
// - Get and Update return sentinel.ErrNotFound when no record exists
type Store interface {
	Create(ctx context.Context, rec *models.Identity) error
	Get(ctx context.Context, id string) (*models.Identity, error)
	List(ctx context.Context, opts entity.ListOptions) ([]*models.Identity, error)
	Update(ctx context.Context, id string, patch entity.Patch[models.Identity]) (*models.Identity, error)
}

// Backup is the downloadable identity backup.
type Backup struct {
	Identity     *models.Identity `json:"identity"`
	BackupPhrase string           `json:"backup_phrase"`
	ExportedAt   time.Time        `json:"exported_at"`
}

type Option func(*Service)

type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(store Store, auditor *audit.Publisher, opts ...Option) *Service {
	s := &Service{
		store:   store,
		auditor: auditor,
		logger:  slog.Default(),
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

// Current returns the caller's identity.
func (s *Service) Current(ctx context.Context) (*models.Identity, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	id, err := s.find(ctx, owner)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	return id, nil
}

// Find is Current without the not found error: a missing identity is nil.
func (s *Service) Find(ctx context.Context) (*models.Identity, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	return s.find(ctx, owner)
}

func (s *Service) find(ctx context.Context, owner string) (*models.Identity, error) {
	ids, err := s.store.List(ctx, entity.ListOptions{CreatedBy: owner, Limit: 1})
	if err != nil {
		return nil, s.translate(ctx, err, "failed to load identity")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids[0], nil
}

// Save creates the caller's identity or updates its editable fields. A new
// identity gets a wallet address, an identity hash, the basic level and a
// backup phrase when none was given. Updates keep all generated fields.
// The bool reports whether a new identity was created.
func (s *Service) Save(ctx context.Context, cmd models.SaveCommand) (*models.Identity, bool, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, false, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	cmd.BackupPhrase = models.NormalizePhrase(cmd.BackupPhrase)
	if err := models.ValidatePhrase(cmd.BackupPhrase); err != nil {
		return nil, false, err
	}

	existing, err := s.find(ctx, owner)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		created, err := s.create(ctx, owner, cmd)
		if err == nil {
			return created, true, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, false, s.translate(ctx, err, "failed to save identity")
		}
		// A concurrent save won the create; fall through to update it.
		if existing, err = s.find(ctx, owner); err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, dErrors.New(dErrors.CodeConflict, "identity changed concurrently")
		}
	}

	updated, err := s.update(ctx, existing.ID, cmd)
	if err != nil {
		return nil, false, err
	}
	return updated, false, nil
}

func (s *Service) create(ctx context.Context, owner string, cmd models.SaveCommand) (*models.Identity, error) {
	wallet, err := NewWalletAddress()
	if err != nil {
		return nil, err
	}
	hash, err := NewIdentityHash()
	if err != nil {
		return nil, err
	}
	phrase := cmd.BackupPhrase
	if phrase == "" {
		phrase = SuggestBackupPhrase()
	}

	id := &models.Identity{
		Meta:              entity.Meta{CreatedBy: owner},
		FullName:          cmd.FullName,
		Nationality:       cmd.Nationality,
		WalletAddress:     wallet,
		IdentityHash:      hash,
		VerificationLevel: models.LevelBasic,
		BackupPhrase:      phrase,
	}
	if err := s.store.Create(ctx, id); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionIdentityCreated,
		EntityType: "identity",
		EntityID:   id.ID,
	})
	s.metrics.IncrementIdentitiesSaved("created")
	s.logger.InfoContext(ctx, "identity created",
		"identity_id", id.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return id, nil
}

func (s *Service) update(ctx context.Context, id string, cmd models.SaveCommand) (*models.Identity, error) {
	changed := false
	updated, err := s.store.Update(ctx, id, func(i *models.Identity) bool {
		changed = cmd.Apply(i)
		if i.BackupPhrase == "" {
			i.BackupPhrase = SuggestBackupPhrase()
			changed = true
		}
		return changed
	})
	if err != nil {
		return nil, s.translate(ctx, err, "failed to save identity")
	}
	if !changed {
		return updated, nil
	}

	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionIdentityUpdated,
		EntityType: "identity",
		EntityID:   id,
	})
	s.metrics.IncrementIdentitiesSaved("updated")
	return updated, nil
}

// BackupPhrase returns a fresh phrase suggestion. Nothing is persisted
// until the caller saves it.
func (s *Service) BackupPhrase(ctx context.Context) (string, error) {
	if requestcontext.Owner(ctx) == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	return SuggestBackupPhrase(), nil
}

// Export builds the backup document for the caller's identity.
func (s *Service) Export(ctx context.Context) (*Backup, error) {
	id, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionIdentityExported,
		EntityType: "identity",
		EntityID:   id.ID,
	})
	return &Backup{
		Identity:     id,
		BackupPhrase: id.BackupPhrase,
		ExportedAt:   requesttime.Now(ctx),
	}, nil
}

func (s *Service) translate(ctx context.Context, err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	s.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
