// Package service implements credential issuance, the wallet listing and
// holder-driven updates.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"identrust/internal/audit"
	"identrust/internal/credential/models"
	"identrust/internal/entity"
	"identrust/internal/platform/metrics"
	"identrust/internal/sentinel"
	"identrust/pkg/domain"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/platform/middleware/requesttime"
	"identrust/pkg/requestcontext"
)

// Store persists credentials. It is satisfied by entity.Store[models.Credential].
// Error Contract:
// - Get and Update return sentinel.ErrNotFound when no record exists
// - Other failures are returned wrapped
type Store interface {
	Create(ctx context.Context, rec *models.Credential) error
	Get(ctx context.Context, id string) (*models.Credential, error)
	List(ctx context.Context, opts entity.ListOptions) ([]*models.Credential, error)
	Update(ctx context.Context, id string, patch entity.Patch[models.Credential]) (*models.Credential, error)
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

// issueForm is the serialized form the verification hash is derived from.
type issueForm struct {
	CredentialType models.CredentialType `json:"credential_type"`
	IssuerName     string                `json:"issuer_name"`
	IssuerType     domain.IssuerType     `json:"issuer_type"`
	CredentialData json.RawMessage       `json:"credential_data"`
	IssueDate      domain.Date           `json:"issue_date"`
	ExpiryDate     domain.Date           `json:"expiry_date"`
	PrivacyLevel   models.PrivacyLevel   `json:"privacy_level"`
}

// Issue creates an active credential for the caller. The id, hash and QR
// payload are all derived before the single store write.
func (s *Service) Issue(ctx context.Context, cmd models.IssueCommand) (*models.Credential, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}

	now := requesttime.Now(ctx)
	if cmd.IssueDate.IsZero() {
		cmd.IssueDate = domain.DateOf(now)
	}
	if !cmd.ExpiryDate.IsZero() && cmd.ExpiryDate.Before(cmd.IssueDate) {
		return nil, dErrors.New(dErrors.CodeValidation, "expiry_date must not precede issue_date")
	}
	if cmd.PrivacyLevel == "" {
		cmd.PrivacyLevel = models.PrivacySelective
	}

	data, err := json.Marshal(map[string]string{"details": cmd.Details})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode credential data")
	}
	form, err := json.Marshal(issueForm{
		CredentialType: cmd.CredentialType,
		IssuerName:     cmd.IssuerName,
		IssuerType:     cmd.IssuerType,
		CredentialData: data,
		IssueDate:      cmd.IssueDate,
		ExpiryDate:     cmd.ExpiryDate,
		PrivacyLevel:   cmd.PrivacyLevel,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode issuance form")
	}

	cred := &models.Credential{
		Meta: entity.Meta{
			ID:        domain.NewID(domain.PrefixCredential),
			CreatedBy: owner,
		},
		CredentialType:   cmd.CredentialType,
		IssuerName:       cmd.IssuerName,
		IssuerType:       cmd.IssuerType,
		CredentialData:   data,
		IssueDate:        cmd.IssueDate,
		ExpiryDate:       cmd.ExpiryDate,
		PrivacyLevel:     cmd.PrivacyLevel,
		VerificationHash: models.Hash(string(form) + strconv.FormatInt(now.UnixMilli(), 10)),
		Status:           models.StatusActive,
	}
	cred.QRCode = models.NewQRPayload(cred).Encode()

	if err := s.store.Create(ctx, cred); err != nil {
		s.logger.ErrorContext(ctx, "failed to create credential",
			"error", err,
			"credential_type", cred.CredentialType,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save credential")
	}

	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionCredentialIssued,
		EntityType: "credential",
		EntityID:   cred.ID,
		Attributes: map[string]string{
			"credential_type": string(cred.CredentialType),
			"issuer_type":     string(cred.IssuerType),
		},
	})
	s.metrics.IncrementCredentialsIssued(string(cred.CredentialType))
	s.logger.InfoContext(ctx, "credential issued",
		"credential_id", cred.ID,
		"credential_type", cred.CredentialType,
		"request_id", requestcontext.RequestID(ctx),
	)
	return cred, nil
}

// List returns the caller's credentials in q.Sort order, narrowed by Filter.
// The limit applies before filtering, as the listing is fetched first.
func (s *Service) List(ctx context.Context, q models.ListQuery) ([]*models.Credential, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	sort := q.Sort
	if sort.Field == "" {
		sort = entity.NewestFirst
	}

	creds, err := s.store.List(ctx, entity.ListOptions{Sort: sort, Limit: q.Limit, CreatedBy: owner})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list credentials",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return Filter(creds, q.Search, q.Type), nil
}

// Get returns one of the caller's credentials. Credentials owned by someone
// else are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*models.Credential, error) {
	owner := requestcontext.Owner(ctx)
	if owner == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	cred, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "failed to load credential")
	}
	if cred.CreatedBy != owner {
		return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	return cred, nil
}

// Update applies u. Replaying a patch returns the stored record unchanged.
func (s *Service) Update(ctx context.Context, id string, u models.Update) (*models.Credential, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	changed := false
	cred, err := s.store.Update(ctx, id, func(c *models.Credential) bool {
		changed = u.Patch(c)
		return changed
	})
	if err != nil {
		return nil, s.translate(ctx, err, "failed to update credential")
	}
	if !changed {
		return cred, nil
	}

	attrs := map[string]string{}
	if u.QRCode != nil {
		attrs["qr_code"] = "set"
		s.metrics.IncrementCredentialsUpdated("qr_code")
	}
	if u.Status != nil {
		attrs["status"] = string(*u.Status)
		s.metrics.IncrementCredentialsUpdated("status")
	}
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionCredentialUpdated,
		EntityType: "credential",
		EntityID:   id,
		Attributes: attrs,
	})
	return cred, nil
}

// Export returns the credential for download and records the export.
func (s *Service) Export(ctx context.Context, id string) (*models.Credential, error) {
	cred, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionCredentialExported,
		EntityType: "credential",
		EntityID:   id,
	})
	return cred, nil
}

func (s *Service) translate(ctx context.Context, err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "credential not found")
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
