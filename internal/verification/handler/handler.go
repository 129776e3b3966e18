// Package handler exposes the simulated verifier over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"identrust/internal/verification/models"
	"identrust/internal/verification/service"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
	"identrust/pkg/validation"
)

type Service interface {
	Scan(ctx context.Context) (*models.Outcome, error)
	Manual(ctx context.Context, hash string) (*models.Outcome, error)
	Recent(ctx context.Context, limit int) ([]*models.Verification, error)
}

var _ Service = (*service.Service)(nil)

// maxUploadSize bounds QR image uploads. The image itself is never decoded.
const maxUploadSize = 5 << 20

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/verifications", func(r chi.Router) {
		r.Get("/", h.HandleRecent)
		r.Post("/scan", h.HandleScan)
		r.Post("/upload", h.HandleUpload)
		r.Post("/manual", h.HandleManual)
	})
}

// ManualRequest is the body of POST /verifications/manual.
type ManualRequest struct {
	Hash string `json:"hash"`
}

func (r *ManualRequest) Sanitize() {
	r.Hash = strings.TrimSpace(r.Hash)
}

func (r *ManualRequest) Validate() error {
	if r.Hash == "" {
		return dErrors.New(dErrors.CodeValidation, "hash is required")
	}
	return validation.CheckStringLength("hash", r.Hash, validation.MaxHashLength)
}

type RecentResponse struct {
	Verifications []*models.Verification `json:"verifications"`
}

func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "scan", func(ctx context.Context) (*models.Outcome, error) {
		return h.service.Scan(ctx)
	})
}

// HandleUpload accepts a QR image as multipart field "file" and treats it
// as a scan. Bodies over maxUploadSize answer 413.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeTooLarge, "file exceeds 5 MB"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file is required"))
		return
	}
	_ = file.Close()
	h.HandleScan(w, r)
}

func (h *Handler) HandleManual(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[ManualRequest](w, r, h.logger)
	if !ok {
		return
	}
	h.respond(w, r, "manual", func(ctx context.Context) (*models.Outcome, error) {
		return h.service.Manual(ctx, req.Hash)
	})
}

func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > validation.MaxListLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and "+strconv.Itoa(validation.MaxListLimit)))
			return
		}
		limit = n
	}
	list, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list verifications",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if list == nil {
		list = []*models.Verification{}
	}
	httputil.WriteJSON(w, http.StatusOK, RecentResponse{Verifications: list})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, run func(context.Context) (*models.Outcome, error)) {
	ctx := r.Context()
	out, err := run(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "verification failed",
			"op", op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, out)
}
