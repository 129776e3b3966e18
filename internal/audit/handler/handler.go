// Package handler serves the caller's audit trail.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"identrust/internal/audit"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
)

type Lister interface {
	List(ctx context.Context, owner string) ([]audit.Event, error)
}

var _ Lister = (*audit.Publisher)(nil)

// maxLimit caps how many events one response carries.
const maxLimit = 500

type Handler struct {
	events Lister
	logger *slog.Logger
}

func New(events Lister, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.HandleList)
}

type ListResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

// HandleList serves GET /audit?limit=N with the newest N events, oldest
// first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit := maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxLimit)
	}

	events, err := h.events.List(ctx, principal.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Events: events, Total: len(events)})
}
