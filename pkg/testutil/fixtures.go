// Package testutil holds builders and helpers shared by tests.
package testutil

import (
	"context"
	"encoding/json"
	"time"

	"identrust/internal/credential/models"
	"identrust/internal/entity"
	"identrust/pkg/domain"
	"identrust/pkg/platform/middleware/requesttime"
	"identrust/pkg/requestcontext"
)

// Owners used across tests.
const (
	OwnerAda   = "ada@example.com"
	OwnerGrace = "grace@example.com"
)

// FixedTime is the request time OwnerContext pins.
var FixedTime = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// OwnerContext authenticates ctx as email and pins the request time.
func OwnerContext(email string) context.Context {
	ctx := requestcontext.WithPrincipal(context.Background(), requestcontext.Principal{
		Email: email,
		Role:  "user",
	})
	ctx = requestcontext.WithRequestID(ctx, "req-test")
	return requesttime.WithTime(ctx, FixedTime)
}

// CredentialBuilder builds credentials with sensible defaults.
type CredentialBuilder struct {
	cred *models.Credential
}

func NewCredentialBuilder() *CredentialBuilder {
	c := &models.Credential{
		Meta: entity.Meta{
			ID:          domain.NewID(domain.PrefixCredential),
			CreatedBy:   OwnerAda,
			CreatedDate: FixedTime,
			UpdatedDate: FixedTime,
		},
		CredentialType:   models.TypeEducation,
		IssuerName:       "Demo University",
		IssuerType:       domain.IssuerUniversity,
		CredentialData:   json.RawMessage(`{"details":"BSc Computer Science"}`),
		IssueDate:        domain.DateOf(FixedTime),
		PrivacyLevel:     models.PrivacySelective,
		VerificationHash: "0x1a2b3c4d",
		Status:           models.StatusActive,
	}
	c.QRCode = models.NewQRPayload(c).Encode()
	return &CredentialBuilder{cred: c}
}

func (b *CredentialBuilder) WithID(id string) *CredentialBuilder {
	b.cred.ID = id
	return b
}

func (b *CredentialBuilder) WithOwner(email string) *CredentialBuilder {
	b.cred.CreatedBy = email
	return b
}

func (b *CredentialBuilder) WithType(t models.CredentialType) *CredentialBuilder {
	b.cred.CredentialType = t
	return b
}

func (b *CredentialBuilder) WithIssuer(name string, t domain.IssuerType) *CredentialBuilder {
	b.cred.IssuerName = name
	b.cred.IssuerType = t
	return b
}

func (b *CredentialBuilder) WithStatus(s models.Status) *CredentialBuilder {
	b.cred.Status = s
	return b
}

func (b *CredentialBuilder) CreatedAt(t time.Time) *CredentialBuilder {
	b.cred.CreatedDate = t
	b.cred.UpdatedDate = t
	return b
}

func (b *CredentialBuilder) Build() *models.Credential {
	c := b.cred.Clone()
	return &c
}
