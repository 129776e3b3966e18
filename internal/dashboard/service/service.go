// Package service aggregates the wallet overview shown on the dashboard.
package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	credmodels "identrust/internal/credential/models"
	"identrust/internal/entity"
	idmodels "identrust/internal/identity/models"
	vermodels "identrust/internal/verification/models"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/requestcontext"
)

const (
	// VerificationLimit caps the verifications the dashboard loads.
	VerificationLimit = 10
	// RecentCredentials is how many credentials the overview lists.
	RecentCredentials = 5

	TrustScoreWithIdentity    = "94%"
	TrustScoreWithoutIdentity = "0%"
	IdentityActive            = "Active"
	IdentitySetupRequired     = "Setup Required"
)

type IdentityFinder interface {
	Find(ctx context.Context) (*idmodels.Identity, error)
}

type CredentialLister interface {
	List(ctx context.Context, q credmodels.ListQuery) ([]*credmodels.Credential, error)
}

type VerificationLister interface {
	Recent(ctx context.Context, limit int) ([]*vermodels.Verification, error)
}

// Overview is the dashboard read model.
type Overview struct {
	Identity          *idmodels.Identity
	LevelLabel        string
	IdentityStatus    string
	TrustScore        string
	Credentials       []*credmodels.Credential
	ActiveCredentials int
	Verifications     []*vermodels.Verification
}

type Service struct {
	identities    IdentityFinder
	credentials   CredentialLister
	verifications VerificationLister
	logger        *slog.Logger
}

func New(identities IdentityFinder, credentials CredentialLister, verifications VerificationLister, logger *slog.Logger) *Service {
	return &Service{
		identities:    identities,
		credentials:   credentials,
		verifications: verifications,
		logger:        logger,
	}
}

// Overview loads the caller's identity, credentials and latest
// verifications concurrently. Any failed load fails the whole overview.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	if requestcontext.Owner(ctx) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}

	var (
		identity      *idmodels.Identity
		credentials   []*credmodels.Credential
		verifications []*vermodels.Verification
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		identity, err = s.identities.Find(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		credentials, err = s.credentials.List(gctx, credmodels.ListQuery{Sort: entity.NewestFirst})
		return err
	})
	g.Go(func() error {
		var err error
		verifications, err = s.verifications.Recent(gctx, VerificationLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to load dashboard",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	return Summarize(identity, credentials, verifications), nil
}

// Summarize derives the overview from loaded records.
func Summarize(identity *idmodels.Identity, credentials []*credmodels.Credential, verifications []*vermodels.Verification) *Overview {
	o := &Overview{
		Identity:       identity,
		LevelLabel:     idmodels.LevelUnverified.Label(),
		IdentityStatus: IdentitySetupRequired,
		TrustScore:     TrustScoreWithoutIdentity,
		Credentials:    credentials,
		Verifications:  verifications,
	}
	if identity != nil {
		o.LevelLabel = identity.VerificationLevel.Label()
		o.IdentityStatus = IdentityActive
		o.TrustScore = TrustScoreWithIdentity
	}
	if len(o.Verifications) > VerificationLimit {
		o.Verifications = o.Verifications[:VerificationLimit]
	}
	for _, c := range credentials {
		if c.Status == credmodels.StatusActive {
			o.ActiveCredentials++
		}
	}
	return o
}
