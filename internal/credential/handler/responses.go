package handler

import (
	"encoding/json"
	"time"

	"identrust/internal/credential/models"
	"identrust/pkg/domain"
)

// IntegritySimulated marks hashes and QR payloads as display strings.
const IntegritySimulated = "simulated"

// CredentialResponse is the wire form of a credential. The hash is masked,
// in verification_hash and inside qr_code, unless the caller asked to
// reveal it.
type CredentialResponse struct {
	ID                string                `json:"id"`
	CreatedDate       time.Time             `json:"created_date"`
	UpdatedDate       time.Time             `json:"updated_date"`
	CreatedBy         string                `json:"created_by"`
	CredentialType    models.CredentialType `json:"credential_type"`
	IssuerName        string                `json:"issuer_name"`
	IssuerType        domain.IssuerType     `json:"issuer_type"`
	CredentialData    json.RawMessage       `json:"credential_data"`
	IssueDate         domain.Date           `json:"issue_date"`
	ExpiryDate        domain.Date           `json:"expiry_date"`
	PrivacyLevel      models.PrivacyLevel   `json:"privacy_level"`
	VerificationHash  string                `json:"verification_hash"`
	HashRevealed      bool                  `json:"hash_revealed"`
	QRCode            string                `json:"qr_code"`
	Status            models.Status         `json:"status"`
	VerificationCount int                   `json:"verification_count"`
	Integrity         string                `json:"integrity"`
}

func toResponse(c *models.Credential, reveal bool) CredentialResponse {
	hash, qr := c.VerificationHash, c.QRCode
	if !reveal {
		hash = models.MaskHash(hash)
		qr = models.MaskQRCode(qr, c.VerificationHash)
	}
	return CredentialResponse{
		ID:                c.ID,
		CreatedDate:       c.CreatedDate,
		UpdatedDate:       c.UpdatedDate,
		CreatedBy:         c.CreatedBy,
		CredentialType:    c.CredentialType,
		IssuerName:        c.IssuerName,
		IssuerType:        c.IssuerType,
		CredentialData:    c.CredentialData,
		IssueDate:         c.IssueDate,
		ExpiryDate:        c.ExpiryDate,
		PrivacyLevel:      c.PrivacyLevel,
		VerificationHash:  hash,
		HashRevealed:      reveal,
		QRCode:            qr,
		Status:            c.Status,
		VerificationCount: c.VerificationCount,
		Integrity:         IntegritySimulated,
	}
}

type ListResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
	Total       int                  `json:"total"`
}
