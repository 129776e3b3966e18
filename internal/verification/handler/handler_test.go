package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"identrust/internal/verification/models"
	"identrust/internal/verification/service"
	"identrust/internal/verification/store"
	"identrust/pkg/platform/middleware/device"
	"identrust/pkg/platform/middleware/metadata"
	"identrust/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewMemory(), nil, service.WithDelays(0, 0), service.WithLogger(logger))
	s.router = chi.NewRouter()
	s.router.Use(metadata.NewMiddleware().Handler, device.Device)
	New(svc, logger).Register(s.router)
}

func (s *HandlerSuite) send(req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(testutil.OwnerContext(testutil.OwnerAda))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestScanUsesDevice() {
	req := httptest.NewRequest(http.MethodPost, "/verifications/scan", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	rec := s.send(req)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var out models.Outcome
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.Equal("citizenship", out.CredentialType)
	s.Contains(out.Location, "Chrome on Linux")
	s.Require().NotNil(out.Verification)
	s.Equal(models.ScanCredentialID, out.Verification.CredentialID)
}

func (s *HandlerSuite) TestManual() {
	rec := s.send(httptest.NewRequest(http.MethodPost, "/verifications/manual", strings.NewReader(`{"hash":"0xdeadbeef"}`)))
	s.Require().Equal(http.StatusCreated, rec.Code)

	var out models.Outcome
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.Equal("Demo University", out.IssuerName)
	s.Equal("0xdeadbeef", out.Verification.CredentialID)

	rec = s.send(httptest.NewRequest(http.MethodPost, "/verifications/manual", strings.NewReader(`{"hash":"   "}`)))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "hash is required")
}

func (s *HandlerSuite) TestUpload() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "qr.png")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("\x89PNG fake"))
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/verifications/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	s.Equal(http.StatusCreated, s.send(req).Code)

	s.Equal(http.StatusBadRequest, s.send(httptest.NewRequest(http.MethodPost, "/verifications/upload", nil)).Code)
}

func (s *HandlerSuite) TestUploadTooLarge() {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "qr.png")
	s.Require().NoError(err)
	_, _ = part.Write(bytes.Repeat([]byte{0xff}, maxUploadSize+1))
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/verifications/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.send(req)

	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	s.Contains(rec.Body.String(), "payload_too_large")

	recent := s.send(httptest.NewRequest(http.MethodGet, "/verifications", nil))
	var out RecentResponse
	s.Require().NoError(json.Unmarshal(recent.Body.Bytes(), &out))
	s.Empty(out.Verifications, "rejected uploads record nothing")
}

func (s *HandlerSuite) TestRecent() {
	for range 6 {
		s.send(httptest.NewRequest(http.MethodPost, "/verifications/manual", strings.NewReader(`{"hash":"0x1"}`)))
	}

	rec := s.send(httptest.NewRequest(http.MethodGet, "/verifications", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	var out RecentResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.Len(out.Verifications, 5)

	rec = s.send(httptest.NewRequest(http.MethodGet, "/verifications?limit=2", nil))
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.Len(out.Verifications, 2)

	s.Equal(http.StatusBadRequest, s.send(httptest.NewRequest(http.MethodGet, "/verifications?limit=abc", nil)).Code)
}
