// Package handler exposes identity settings over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"identrust/internal/identity/models"
	"identrust/internal/identity/service"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
	"identrust/pkg/validation"
)

type Service interface {
	Current(ctx context.Context) (*models.Identity, error)
	Save(ctx context.Context, cmd models.SaveCommand) (*models.Identity, bool, error)
	BackupPhrase(ctx context.Context) (string, error)
	Export(ctx context.Context) (*service.Backup, error)
}

var _ Service = (*service.Service)(nil)

// BackupFilename is the download name of identity exports.
const BackupFilename = "identrust-backup.json"

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/identity", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleSave)
		r.Get("/backup-phrase", h.HandleBackupPhrase)
		r.Get("/export", h.HandleExport)
	})
}

// SaveRequest is the body of PUT /identity.
type SaveRequest struct {
	FullName     string `json:"full_name" validate:"notblank,max=200"`
	Nationality  string `json:"nationality" validate:"max=100"`
	BackupPhrase string `json:"backup_phrase" validate:"max=500"`
}

func (r *SaveRequest) Sanitize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Nationality = strings.TrimSpace(r.Nationality)
}

func (r *SaveRequest) Normalize() {
	r.BackupPhrase = models.NormalizePhrase(r.BackupPhrase)
}

func (r *SaveRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return models.ValidatePhrase(r.BackupPhrase)
}

type BackupPhraseResponse struct {
	BackupPhrase string `json:"backup_phrase"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.Current(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "load identity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, id)
}

// HandleSave answers 201 when the identity was created and 200 on update.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SaveRequest](w, r, h.logger)
	if !ok {
		return
	}
	id, created, err := h.service.Save(ctx, models.SaveCommand{
		FullName:     req.FullName,
		Nationality:  req.Nationality,
		BackupPhrase: req.BackupPhrase,
	})
	if err != nil {
		h.fail(ctx, w, "save identity", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, id)
}

func (h *Handler) HandleBackupPhrase(w http.ResponseWriter, r *http.Request) {
	phrase, err := h.service.BackupPhrase(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "load backup phrase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BackupPhraseResponse{BackupPhrase: phrase})
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	backup, err := h.service.Export(ctx)
	if err != nil {
		h.fail(ctx, w, "export identity", err)
		return
	}
	body, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		h.fail(ctx, w, "encode identity export", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode export"))
		return
	}
	httputil.WriteDownload(w, "application/json", BackupFilename, body)
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
