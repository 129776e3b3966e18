// Package handler exposes the trusted institution list.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"identrust/internal/institution/models"
	"identrust/internal/institution/service"
	"identrust/pkg/domain"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, issuerType domain.IssuerType) ([]*models.Institution, error)
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
	r.Get("/institutions", h.HandleList)
}

type ListResponse struct {
	Institutions []*models.Institution `json:"institutions"`
	Total        int                   `json:"total"`
}

// HandleList serves GET /institutions?type=bank.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var issuerType domain.IssuerType
	if raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))); raw != "" {
		t, err := domain.ParseIssuerType(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		issuerType = t
	}

	list, err := h.service.List(ctx, issuerType)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list institutions",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if list == nil {
		list = []*models.Institution{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Institutions: list, Total: len(list)})
}
