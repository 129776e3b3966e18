package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credmodels "identrust/internal/credential/models"
	"identrust/internal/entity"
	idmodels "identrust/internal/identity/models"
	vermodels "identrust/internal/verification/models"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/testutil"
)

type fakeIdentities struct {
	identity *idmodels.Identity
	err      error
}

func (f fakeIdentities) Find(context.Context) (*idmodels.Identity, error) { return f.identity, f.err }

type fakeCredentials struct {
	creds []*credmodels.Credential
	query credmodels.ListQuery
}

func (f *fakeCredentials) List(_ context.Context, q credmodels.ListQuery) ([]*credmodels.Credential, error) {
	f.query = q
	return f.creds, nil
}

type fakeVerifications struct {
	limit int
	n     int
}

func (f *fakeVerifications) Recent(_ context.Context, limit int) ([]*vermodels.Verification, error) {
	f.limit = limit
	out := make([]*vermodels.Verification, 0, f.n)
	for range f.n {
		out = append(out, &vermodels.Verification{VerificationResult: vermodels.ResultVerified})
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func credentials(statuses ...credmodels.Status) []*credmodels.Credential {
	out := make([]*credmodels.Credential, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, testutil.NewCredentialBuilder().WithStatus(st).Build())
	}
	return out
}

func TestOverviewWithIdentity(t *testing.T) {
	creds := &fakeCredentials{creds: credentials(credmodels.StatusActive, credmodels.StatusRevoked, credmodels.StatusActive)}
	vers := &fakeVerifications{n: 3}
	svc := New(fakeIdentities{identity: &idmodels.Identity{VerificationLevel: idmodels.LevelPremium}}, creds, vers, discardLogger())

	o, err := svc.Overview(testutil.OwnerContext(testutil.OwnerAda))
	require.NoError(t, err)

	assert.Equal(t, "Premium Verified", o.LevelLabel)
	assert.Equal(t, IdentityActive, o.IdentityStatus)
	assert.Equal(t, TrustScoreWithIdentity, o.TrustScore)
	assert.Len(t, o.Credentials, 3)
	assert.Equal(t, 2, o.ActiveCredentials)
	assert.Len(t, o.Verifications, 3)

	assert.Equal(t, entity.NewestFirst, creds.query.Sort)
	assert.Equal(t, VerificationLimit, vers.limit)
}

func TestOverviewWithoutIdentity(t *testing.T) {
	svc := New(fakeIdentities{}, &fakeCredentials{}, &fakeVerifications{}, discardLogger())

	o, err := svc.Overview(testutil.OwnerContext(testutil.OwnerAda))
	require.NoError(t, err)

	assert.Nil(t, o.Identity)
	assert.Equal(t, "Unverified", o.LevelLabel)
	assert.Equal(t, IdentitySetupRequired, o.IdentityStatus)
	assert.Equal(t, TrustScoreWithoutIdentity, o.TrustScore)
	assert.Zero(t, o.ActiveCredentials)
}

func TestOverviewFailsWhenAnyLoadFails(t *testing.T) {
	boom := dErrors.New(dErrors.CodeInternal, "failed to load identity")
	svc := New(fakeIdentities{err: boom}, &fakeCredentials{}, &fakeVerifications{}, discardLogger())

	_, err := svc.Overview(testutil.OwnerContext(testutil.OwnerAda))
	assert.True(t, errors.Is(err, boom))
}

func TestOverviewRequiresOwner(t *testing.T) {
	svc := New(fakeIdentities{}, &fakeCredentials{}, &fakeVerifications{}, discardLogger())

	_, err := svc.Overview(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestSummarizeCapsVerifications(t *testing.T) {
	vers := make([]*vermodels.Verification, 15)
	for i := range vers {
		vers[i] = &vermodels.Verification{}
	}
	o := Summarize(nil, nil, vers)
	assert.Len(t, o.Verifications, VerificationLimit)
}

func TestSummarizeLevelLabels(t *testing.T) {
	tests := []struct {
		level idmodels.Level
		want  string
	}{
		{idmodels.LevelPremium, "Premium Verified"},
		{idmodels.LevelEnhanced, "Enhanced"},
		{idmodels.LevelBasic, "Basic Verified"},
		{idmodels.LevelUnverified, "Unverified"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			o := Summarize(&idmodels.Identity{VerificationLevel: tt.level}, nil, nil)
			assert.Equal(t, tt.want, o.LevelLabel)
		})
	}
}
