package handler

import (
	"net/url"
	"strconv"
	"strings"

	"identrust/internal/credential/models"
	"identrust/internal/entity"
	"identrust/pkg/domain"
	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/validation"
)

// IssueRequest is the body of POST /credentials.
type IssueRequest struct {
	CredentialType string `json:"credential_type" validate:"required,oneof=citizenship education employment healthcare banking voting_eligibility"`
	IssuerName     string `json:"issuer_name" validate:"notblank,max=200"`
	IssuerType     string `json:"issuer_type" validate:"required,oneof=government university bank hospital employer certification_body"`
	CredentialData string `json:"credential_data" validate:"max=4096"`
	IssueDate      string `json:"issue_date" validate:"isodate"`
	ExpiryDate     string `json:"expiry_date" validate:"isodate"`
	PrivacyLevel   string `json:"privacy_level" validate:"omitempty,oneof=public selective private"`
}

func (r *IssueRequest) Sanitize() {
	r.IssuerName = strings.TrimSpace(r.IssuerName)
	r.CredentialData = strings.TrimSpace(r.CredentialData)
	r.IssueDate = strings.TrimSpace(r.IssueDate)
	r.ExpiryDate = strings.TrimSpace(r.ExpiryDate)
}

func (r *IssueRequest) Normalize() {
	r.CredentialType = strings.ToLower(strings.TrimSpace(r.CredentialType))
	r.IssuerType = strings.ToLower(strings.TrimSpace(r.IssuerType))
	r.PrivacyLevel = strings.ToLower(strings.TrimSpace(r.PrivacyLevel))
}

func (r *IssueRequest) Validate() error {
	return validation.Validate(r)
}

// Command converts a prepared request into the service input.
func (r *IssueRequest) Command() (models.IssueCommand, error) {
	credType, err := models.ParseCredentialType(r.CredentialType)
	if err != nil {
		return models.IssueCommand{}, err
	}
	issuerType, err := domain.ParseIssuerType(r.IssuerType)
	if err != nil {
		return models.IssueCommand{}, err
	}
	privacy, err := models.ParsePrivacyLevel(r.PrivacyLevel)
	if err != nil {
		return models.IssueCommand{}, err
	}
	cmd := models.IssueCommand{
		CredentialType: credType,
		IssuerName:     r.IssuerName,
		IssuerType:     issuerType,
		Details:        r.CredentialData,
		PrivacyLevel:   privacy,
	}
	if r.IssueDate != "" {
		if cmd.IssueDate, err = domain.ParseDate(r.IssueDate); err != nil {
			return models.IssueCommand{}, err
		}
	}
	if r.ExpiryDate != "" {
		if cmd.ExpiryDate, err = domain.ParseDate(r.ExpiryDate); err != nil {
			return models.IssueCommand{}, err
		}
	}
	return cmd, nil
}

// UpdateRequest is the body of PATCH /credentials/{id}.
type UpdateRequest struct {
	QRCode *string `json:"qr_code"`
	Status *string `json:"status"`
}

func (r *UpdateRequest) Validate() error {
	if r.QRCode == nil && r.Status == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one of qr_code or status is required")
	}
	if r.QRCode != nil {
		if err := validation.CheckStringLength("qr_code", *r.QRCode, validation.MaxDetailsLength); err != nil {
			return err
		}
	}
	return nil
}

func (r *UpdateRequest) Update() (models.Update, error) {
	u := models.Update{QRCode: r.QRCode}
	if r.Status != nil {
		st, err := models.ParseStatus(*r.Status)
		if err != nil {
			return models.Update{}, err
		}
		u.Status = &st
	}
	return u, nil
}

// parseListQuery reads ?search=&type=&sort=&limit=.
func parseListQuery(q url.Values) (models.ListQuery, error) {
	search := strings.TrimSpace(q.Get("search"))
	if err := validation.CheckStringLength("search", search, validation.MaxSearchLength); err != nil {
		return models.ListQuery{}, err
	}
	credType := strings.ToLower(strings.TrimSpace(q.Get("type")))
	sort, err := entity.ParseSort(q.Get("sort"))
	if err != nil {
		return models.ListQuery{}, err
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > validation.MaxListLimit {
			return models.ListQuery{}, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and "+strconv.Itoa(validation.MaxListLimit))
		}
	}
	return models.ListQuery{Search: search, Type: credType, Sort: sort, Limit: limit}, nil
}
