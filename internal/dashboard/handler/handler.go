// Package handler serves GET /dashboard.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	credmodels "identrust/internal/credential/models"
	"identrust/internal/dashboard/service"
	vermodels "identrust/internal/verification/models"
	"identrust/pkg/domain"
	"identrust/pkg/platform/httputil"
	"identrust/pkg/requestcontext"
)

type Service interface {
	Overview(ctx context.Context) (*service.Overview, error)
}

var _ Service = (*service.Service)(nil)

// walletPreviewLen is how much of the wallet address the overview shows.
const walletPreviewLen = 20

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.HandleOverview)
}

type IdentitySummary struct {
	FullName          string `json:"full_name"`
	Nationality       string `json:"nationality"`
	WalletPreview     string `json:"wallet_preview"`
	VerificationLevel string `json:"verification_level"`
}

type Stats struct {
	IdentityStatus    string `json:"identity_status"`
	LevelLabel        string `json:"level_label"`
	Credentials       int    `json:"credentials"`
	ActiveCredentials int    `json:"active_credentials"`
	Verifications     int    `json:"verifications"`
	TrustScore        string `json:"trust_score"`
}

type CredentialSummary struct {
	ID             string                    `json:"id"`
	CredentialType credmodels.CredentialType `json:"credential_type"`
	IssuerName     string                    `json:"issuer_name"`
	Status         credmodels.Status         `json:"status"`
	IssueDate      domain.Date               `json:"issue_date"`
}

type Response struct {
	Identity            *IdentitySummary          `json:"identity"`
	Stats               Stats                     `json:"stats"`
	RecentCredentials   []CredentialSummary       `json:"recent_credentials"`
	RecentVerifications []*vermodels.Verification `json:"recent_verifications"`
}

func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := h.service.Overview(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to build dashboard",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(o))
}

func toResponse(o *service.Overview) Response {
	resp := Response{
		Stats: Stats{
			IdentityStatus:    o.IdentityStatus,
			LevelLabel:        o.LevelLabel,
			Credentials:       len(o.Credentials),
			ActiveCredentials: o.ActiveCredentials,
			Verifications:     len(o.Verifications),
			TrustScore:        o.TrustScore,
		},
		RecentCredentials:   make([]CredentialSummary, 0, service.RecentCredentials),
		RecentVerifications: o.Verifications,
	}
	if resp.RecentVerifications == nil {
		resp.RecentVerifications = []*vermodels.Verification{}
	}
	if id := o.Identity; id != nil {
		preview := id.WalletAddress
		if len(preview) > walletPreviewLen {
			preview = preview[:walletPreviewLen] + "..."
		}
		resp.Identity = &IdentitySummary{
			FullName:          id.FullName,
			Nationality:       id.Nationality,
			WalletPreview:     preview,
			VerificationLevel: string(id.VerificationLevel),
		}
	}
	for i, c := range o.Credentials {
		if i == service.RecentCredentials {
			break
		}
		resp.RecentCredentials = append(resp.RecentCredentials, CredentialSummary{
			ID:             c.ID,
			CredentialType: c.CredentialType,
			IssuerName:     c.IssuerName,
			Status:         c.Status,
			IssueDate:      c.IssueDate,
		})
	}
	return resp
}
