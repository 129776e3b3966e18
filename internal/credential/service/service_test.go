package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"identrust/internal/audit"
	"identrust/internal/credential/models"
	"identrust/internal/credential/service/mocks"
	"identrust/internal/credential/store"
	"identrust/internal/entity"
	"identrust/internal/sentinel"
	"identrust/pkg/domain"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/testutil"
)

var hashPattern = regexp.MustCompile(`^0x[0-9a-f]{8}$`)

func educationCommand() models.IssueCommand {
	return models.IssueCommand{
		CredentialType: models.TypeEducation,
		IssuerName:     "Demo University",
		IssuerType:     domain.IssuerUniversity,
		Details:        "BSc Computer Science",
	}
}

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockStore  *mocks.MockStore
	auditStore *audit.InMemoryStore
	service    *Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.auditStore = audit.NewInMemoryStore()
	s.service = New(s.mockStore, audit.NewPublisher(s.auditStore),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.ctx = testutil.OwnerContext(testutil.OwnerAda)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestIssueWritesOnce() {
	var stored *models.Credential
	s.mockStore.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *models.Credential) error {
			stored = c
			return nil
		}).
		Times(1)

	cred, err := s.service.Issue(s.ctx, educationCommand())
	s.Require().NoError(err)
	s.Same(stored, cred)

	s.Equal(models.StatusActive, cred.Status)
	s.Zero(cred.VerificationCount)
	s.Regexp(hashPattern, cred.VerificationHash)
	s.Equal(testutil.OwnerAda, cred.CreatedBy)
	s.Equal(models.PrivacySelective, cred.PrivacyLevel)
	s.Equal(domain.DateOf(testutil.FixedTime), cred.IssueDate)
	s.True(cred.ExpiryDate.IsZero())
	s.JSONEq(`{"details":"BSc Computer Science"}`, string(cred.CredentialData))

	var qr models.QRPayload
	s.Require().NoError(json.Unmarshal([]byte(cred.QRCode), &qr))
	s.Equal(cred.ID, qr.ID)
	s.Equal("education", qr.Type)
	s.Equal("Demo University", qr.Issuer)
	s.Equal(cred.VerificationHash, qr.Hash)
	s.Nil(qr.Expires)

	events, err := s.auditStore.ListByOwner(context.Background(), testutil.OwnerAda)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionCredentialIssued, events[0].Action)
	s.Equal(cred.ID, events[0].EntityID)
}

func (s *ServiceSuite) TestIssueRejections() {
	s.T().Run("anonymous caller", func(t *testing.T) {
		_, err := s.service.Issue(context.Background(), educationCommand())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("expiry before issue date", func(t *testing.T) {
		cmd := educationCommand()
		cmd.IssueDate = domain.NewDate(2025, 3, 14)
		cmd.ExpiryDate = domain.NewDate(2025, 3, 13)
		_, err := s.service.Issue(s.ctx, cmd)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("store failure is internal", func(t *testing.T) {
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)
		_, err := s.service.Issue(s.ctx, educationCommand())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestListScopesToOwnerAndFilters() {
	creds := []*models.Credential{
		testutil.NewCredentialBuilder().WithType(models.TypeBanking).WithIssuer("First Demo Bank", domain.IssuerBank).Build(),
		testutil.NewCredentialBuilder().Build(),
	}
	s.mockStore.EXPECT().
		List(gomock.Any(), entity.ListOptions{Sort: entity.NewestFirst, CreatedBy: testutil.OwnerAda}).
		Return(creds, nil)

	got, err := s.service.List(s.ctx, models.ListQuery{Search: "bank"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(models.TypeBanking, got[0].CredentialType)
}

func (s *ServiceSuite) TestGetHidesOtherOwners() {
	cred := testutil.NewCredentialBuilder().WithOwner(testutil.OwnerGrace).Build()
	s.mockStore.EXPECT().Get(gomock.Any(), cred.ID).Return(cred, nil)

	_, err := s.service.Get(s.ctx, cred.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestGetTranslatesStoreErrors() {
	s.mockStore.EXPECT().Get(gomock.Any(), "cred_missing").Return(nil, sentinel.ErrNotFound)
	_, err := s.service.Get(s.ctx, "cred_missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.mockStore.EXPECT().Get(gomock.Any(), "cred_broken").Return(nil, assert.AnError)
	_, err = s.service.Get(s.ctx, "cred_broken")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestUpdateAuditsOnlyChanges() {
	cred := testutil.NewCredentialBuilder().Build()
	revoked := models.StatusRevoked
	s.mockStore.EXPECT().Get(gomock.Any(), cred.ID).Return(cred, nil).Times(2)
	s.mockStore.EXPECT().
		Update(gomock.Any(), cred.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, patch entity.Patch[models.Credential]) (*models.Credential, error) {
			patch(cred)
			return cred, nil
		}).
		Times(2)

	_, err := s.service.Update(s.ctx, cred.ID, models.Update{Status: &revoked})
	s.Require().NoError(err)
	_, err = s.service.Update(s.ctx, cred.ID, models.Update{Status: &revoked})
	s.Require().NoError(err)

	events, err := s.auditStore.ListByOwner(context.Background(), testutil.OwnerAda)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionCredentialUpdated, events[0].Action)
	s.Equal("revoked", events[0].Attributes["status"])
}

// Runs against the real in-memory store to observe what is persisted.
func TestIssueThenPatchQRCodeIsIdempotent(t *testing.T) {
	svc := New(store.NewMemory(), nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := testutil.OwnerContext(testutil.OwnerAda)

	cred, err := svc.Issue(ctx, educationCommand())
	require.NoError(t, err)

	qr := `{"id":"` + cred.ID + `","type":"education"}`
	first, err := svc.Update(ctx, cred.ID, models.Update{QRCode: &qr})
	require.NoError(t, err)
	second, err := svc.Update(ctx, cred.ID, models.Update{QRCode: &qr})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	stored, err := svc.Get(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestIssueHashIsWellFormedForArbitraryInput(t *testing.T) {
	svc := New(store.NewMemory(), nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := testutil.OwnerContext(testutil.OwnerAda)

	for _, details := range []string{"", "ümlaut ✓", "emoji 🎓", string(make([]byte, 4096))} {
		cmd := educationCommand()
		cmd.Details = details
		cred, err := svc.Issue(ctx, cmd)
		require.NoError(t, err)
		assert.Regexp(t, hashPattern, cred.VerificationHash)
	}
}
