// Package handler exposes demo walkthroughs. Sessions are anonymous and
// keyed by the X-Demo-Session header.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"identrust/internal/demo/models"
	"identrust/internal/demo/service"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
)

// SessionHeader carries the demo session id in both directions.
const SessionHeader = "X-Demo-Session"

type Service interface {
	Scenarios() []models.Scenario
	Session(ctx context.Context, session string) (models.View, error)
	Apply(ctx context.Context, session string, a models.Action, scenarioID string) (models.View, error)
}

var _ Service = (*service.Service)(nil)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/demos", func(r chi.Router) {
		r.Get("/", h.HandleScenarios)
		r.Get("/session", h.HandleSession)
		r.Post("/{scenario}/start", h.HandleStart)
		r.Post("/next", h.transition(models.ActionNext))
		r.Post("/previous", h.transition(models.ActionPrevious))
		r.Post("/reset", h.transition(models.ActionReset))
		r.Post("/try-another", h.transition(models.ActionTryAnother))
	})
}

type ScenariosResponse struct {
	Scenarios []models.Scenario `json:"scenarios"`
}

func (h *Handler) HandleScenarios(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ScenariosResponse{Scenarios: h.service.Scenarios()})
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := h.session(w, r)
	v, err := h.service.Session(ctx, session)
	if err != nil {
		h.fail(ctx, w, "load demo session", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, models.ActionStart, chi.URLParam(r, "scenario"))
}

func (h *Handler) transition(a models.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.apply(w, r, a, "")
	}
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, a models.Action, scenarioID string) {
	ctx := r.Context()
	session := h.session(w, r)
	v, err := h.service.Apply(ctx, session, a, scenarioID)
	if err != nil {
		h.fail(ctx, w, "apply demo "+string(a), err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// session reads the session id, minting one when the header is absent or
// malformed, and echoes it back.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	return id
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(err) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "failed to "+op,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
