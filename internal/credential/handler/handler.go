// Package handler exposes the credential wallet over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"identrust/internal/credential/models"
	"identrust/internal/credential/service"
	"identrust/pkg/domain"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
)

// Service is the credential behaviour the handler depends on.
type Service interface {
	Issue(ctx context.Context, cmd models.IssueCommand) (*models.Credential, error)
	List(ctx context.Context, q models.ListQuery) ([]*models.Credential, error)
	Get(ctx context.Context, id string) (*models.Credential, error)
	Update(ctx context.Context, id string, u models.Update) (*models.Credential, error)
	Export(ctx context.Context, id string) (*models.Credential, error)
}

var _ Service = (*service.Service)(nil)

// qrPNGSize is the edge length in pixels of downloaded QR images.
const qrPNGSize = 256

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts credential routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/credentials", func(r chi.Router) {
		r.Post("/", h.HandleIssue)
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
		r.Patch("/{id}", h.HandleUpdate)
		r.Get("/{id}/export", h.HandleExport)
		r.Get("/{id}/qr.svg", h.HandleQRSVG)
		r.Get("/{id}/qr.png", h.HandleQRPNG)
	})
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger)
	if !ok {
		return
	}
	cmd, err := req.Command()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cred, err := h.service.Issue(ctx, cmd)
	if err != nil {
		h.fail(ctx, w, "issue credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(cred, true))
}

// HandleList serves GET /credentials. reveal=true unmasks every hash;
// otherwise reveal may list the ids whose hash is shown.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	creds, err := h.service.List(ctx, q)
	if err != nil {
		h.fail(ctx, w, "list credentials", err)
		return
	}

	revealAll, revealIDs := parseReveal(r.URL.Query().Get("reveal"))
	out := ListResponse{Credentials: make([]CredentialResponse, 0, len(creds)), Total: len(creds)}
	for _, c := range creds {
		out.Credentials = append(out.Credentials, toResponse(c, revealAll || slices.Contains(revealIDs, c.ID)))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.load(w, r, h.service.Get)
	if !ok {
		return
	}
	revealAll, _ := parseReveal(r.URL.Query().Get("reveal"))
	httputil.WriteJSON(w, http.StatusOK, toResponse(cred, revealAll))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(domain.PrefixCredential, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger)
	if !ok {
		return
	}
	u, err := req.Update()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cred, err := h.service.Update(ctx, id, u)
	if err != nil {
		h.fail(ctx, w, "update credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(cred, false))
}

// HandleExport downloads the full record, hash included.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.load(w, r, h.service.Export)
	if !ok {
		return
	}
	body, err := json.MarshalIndent(toResponse(cred, true), "", "  ")
	if err != nil {
		h.fail(r.Context(), w, "encode credential export", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode export"))
		return
	}
	httputil.WriteDownload(w, "application/json", string(cred.CredentialType)+"-credential.json", body)
}

func (h *Handler) HandleQRSVG(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.load(w, r, h.service.Get)
	if !ok {
		return
	}
	httputil.WriteDownload(w, "image/svg+xml", string(cred.CredentialType)+"-qr.svg", models.PlaceholderSVG(cred))
}

// HandleQRPNG renders the stored qr_code payload as a scannable PNG.
func (h *Handler) HandleQRPNG(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.load(w, r, h.service.Get)
	if !ok {
		return
	}
	png, err := qrcode.Encode(cred.QRCode, qrcode.Medium, qrPNGSize)
	if err != nil {
		h.fail(r.Context(), w, "encode qr png", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render qr code"))
		return
	}
	httputil.WriteDownload(w, "image/png", string(cred.CredentialType)+"-qr.png", png)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, get func(context.Context, string) (*models.Credential, error)) (*models.Credential, bool) {
	ctx := r.Context()
	id, err := domain.ParseID(domain.PrefixCredential, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	cred, err := get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "load credential", err)
		return nil, false
	}
	return cred, true
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

func parseReveal(raw string) (all bool, ids []string) {
	raw = strings.TrimSpace(raw)
	if raw == "true" || raw == "all" {
		return true, nil
	}
	for id := range strings.SplitSeq(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return false, ids
}
