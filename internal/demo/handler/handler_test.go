package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"identrust/internal/demo/models"
	"identrust/internal/demo/service"
	"identrust/internal/demo/store"
)

type HandlerSuite struct {
	suite.Suite
	router  chi.Router
	session string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(service.New(store.NewCache(time.Minute), service.WithLogger(logger)), logger).Register(s.router)
	s.session = uuid.NewString()
}

func (s *HandlerSuite) do(method, target string) (*httptest.ResponseRecorder, models.View) {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(SessionHeader, s.session)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var v models.View
	if rec.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &v))
	}
	return rec, v
}

func (s *HandlerSuite) TestScenarios() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/demos", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	var out ScenariosResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.Len(out.Scenarios, 4)
	s.Equal("Banking KYC Verification", out.Scenarios[0].Title)
}

func (s *HandlerSuite) TestWalkthrough() {
	_, v := s.do(http.MethodGet, "/demos/session")
	s.Equal(models.StatusIdle, v.Status)

	rec, v := s.do(http.MethodPost, "/demos/education/start")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(s.session, rec.Header().Get(SessionHeader))
	s.Equal("education", v.Scenario.ID)
	s.Equal(1, v.StepNumber)

	_, v = s.do(http.MethodPost, "/demos/previous")
	s.Equal(0, v.Step)

	for range 6 {
		_, v = s.do(http.MethodPost, "/demos/next")
	}
	s.True(v.Complete)
	s.Equal(models.CompletionMessage, v.CompletionMessage)

	_, v = s.do(http.MethodPost, "/demos/try-another")
	s.Equal(models.StatusIdle, v.Status)
}

func (s *HandlerSuite) TestReset() {
	s.do(http.MethodPost, "/demos/voting/start")
	s.do(http.MethodPost, "/demos/next")

	_, v := s.do(http.MethodPost, "/demos/reset")
	s.Equal(models.StatusIdle, v.Status)
	_, v = s.do(http.MethodGet, "/demos/session")
	s.Equal(models.StatusIdle, v.Status)
}

func (s *HandlerSuite) TestUnknownScenario() {
	rec, _ := s.do(http.MethodPost, "/demos/casino/start")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestMintsSessionWhenMissing() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/demos/banking/start", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	_, err := uuid.Parse(rec.Header().Get(SessionHeader))
	s.NoError(err)
}
