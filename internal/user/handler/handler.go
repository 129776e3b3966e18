package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"identrust/internal/user/models"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
)

// Service defines the user operations used by the handler.
type Service interface {
	Me(ctx context.Context) (*models.User, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts user endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.HandleMe)
}

// HandleMe handles GET /me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me, err := h.service.Me(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to resolve caller",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, me)
}
