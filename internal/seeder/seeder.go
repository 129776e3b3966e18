// Package seeder loads the trusted institution list and, for demos, a
// sample wallet.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	credmodels "identrust/internal/credential/models"
	"identrust/internal/entity"
	idmodels "identrust/internal/identity/models"
	instmodels "identrust/internal/institution/models"
	"identrust/internal/sentinel"
	"identrust/pkg/domain"
	"identrust/pkg/requestcontext"
)

// SystemOwner is the created_by of seeded records.
const SystemOwner = "system@identrust.local"

// InstitutionStore defines methods for seeding institutions
type InstitutionStore interface {
	Create(ctx context.Context, rec *instmodels.Institution) error
}

// IdentitySaver creates the demo identity.
type IdentitySaver interface {
	Save(ctx context.Context, cmd idmodels.SaveCommand) (*idmodels.Identity, bool, error)
}

// CredentialIssuer issues the demo credentials.
type CredentialIssuer interface {
	Issue(ctx context.Context, cmd credmodels.IssueCommand) (*credmodels.Credential, error)
	List(ctx context.Context, q credmodels.ListQuery) ([]*credmodels.Credential, error)
}

// Institutions is the seeded trusted institution list.
var Institutions = []instmodels.Institution{
	{Name: "Department of Home Affairs", Type: domain.IssuerGovernment, Country: "South Africa", Verified: true},
	{Name: "Demo University", Type: domain.IssuerUniversity, Country: "South Africa", Verified: true},
	{Name: "First Demo Bank", Type: domain.IssuerBank, Country: "South Africa", Verified: true},
	{Name: "City General Hospital", Type: domain.IssuerHospital, Country: "South Africa", Verified: true},
}

// Seeder populates stores with reference and demo data
type Seeder struct {
	institutions InstitutionStore
	identities   IdentitySaver
	credentials  CredentialIssuer
	logger       *slog.Logger
}

// New creates a seeder. identities and credentials may be nil when no demo
// wallet is seeded.
func New(institutions InstitutionStore, identities IdentitySaver, credentials CredentialIssuer, logger *slog.Logger) *Seeder {
	return &Seeder{
		institutions: institutions,
		identities:   identities,
		credentials:  credentials,
		logger:       logger,
	}
}

// SeedInstitutions inserts the institution list. Entries that already exist
// are skipped, so it is safe on every start-up.
func (s *Seeder) SeedInstitutions(ctx context.Context) error {
	created := 0
	for _, inst := range Institutions {
		rec := inst
		rec.Meta = entity.Meta{CreatedBy: SystemOwner}
		err := s.institutions.Create(ctx, &rec)
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed institution %q: %w", inst.Name, err)
		}
		created++
	}
	s.logger.InfoContext(ctx, "institutions seeded", "created", created, "total", len(Institutions))
	return nil
}

// SeedWallet gives owner an identity and one credential per sample when the
// wallet is still empty.
func (s *Seeder) SeedWallet(ctx context.Context, owner string) error {
	if s.identities == nil || s.credentials == nil {
		return errors.New("seeder: wallet seeding needs identity and credential services")
	}
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{Email: owner, Role: "user"})

	existing, err := s.credentials.List(ctx, credmodels.ListQuery{Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to inspect wallet: %w", err)
	}
	if len(existing) > 0 {
		s.logger.InfoContext(ctx, "demo wallet already seeded", "owner", owner)
		return nil
	}

	if _, _, err := s.identities.Save(ctx, idmodels.SaveCommand{
		FullName:    "Demo Holder",
		Nationality: "South Africa",
	}); err != nil {
		return fmt.Errorf("failed to seed identity: %w", err)
	}

	samples := []credmodels.IssueCommand{
		{CredentialType: credmodels.TypeCitizenship, IssuerName: "Department of Home Affairs", IssuerType: domain.IssuerGovernment, Details: "Citizen"},
		{CredentialType: credmodels.TypeEducation, IssuerName: "Demo University", IssuerType: domain.IssuerUniversity, Details: "BSc Computer Science"},
		{CredentialType: credmodels.TypeBanking, IssuerName: "First Demo Bank", IssuerType: domain.IssuerBank, Details: "KYC tier 2"},
	}
	for _, cmd := range samples {
		if _, err := s.credentials.Issue(ctx, cmd); err != nil {
			return fmt.Errorf("failed to seed %s credential: %w", cmd.CredentialType, err)
		}
	}

	s.logger.InfoContext(ctx, "demo wallet seeded",
		"owner", owner,
		"credentials", len(samples),
	)
	return nil
}
