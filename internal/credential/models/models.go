package models

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"identrust/internal/entity"
	"identrust/pkg/domain"
	dErrors "identrust/pkg/domain-errors"
)

// CredentialType is the kind of claim a credential attests.
type CredentialType string

const (
	TypeCitizenship       CredentialType = "citizenship"
	TypeEducation         CredentialType = "education"
	TypeEmployment        CredentialType = "employment"
	TypeHealthcare        CredentialType = "healthcare"
	TypeBanking           CredentialType = "banking"
	TypeVotingEligibility CredentialType = "voting_eligibility"
)

// CredentialTypes lists every supported type.
var CredentialTypes = []CredentialType{
	TypeCitizenship, TypeEducation, TypeEmployment,
	TypeHealthcare, TypeBanking, TypeVotingEligibility,
}

func ParseCredentialType(s string) (CredentialType, error) {
	t := CredentialType(strings.TrimSpace(s))
	if !slices.Contains(CredentialTypes, t) {
		return "", dErrors.New(dErrors.CodeValidation, "unsupported credential_type: "+s)
	}
	return t, nil
}

// PrivacyLevel controls how much of a credential a holder discloses.
type PrivacyLevel string

const (
	PrivacyPublic    PrivacyLevel = "public"
	PrivacySelective PrivacyLevel = "selective"
	PrivacyPrivate   PrivacyLevel = "private"
)

func ParsePrivacyLevel(s string) (PrivacyLevel, error) {
	switch l := PrivacyLevel(strings.TrimSpace(s)); l {
	case PrivacyPublic, PrivacySelective, PrivacyPrivate:
		return l, nil
	case "":
		return PrivacySelective, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unsupported privacy_level: "+s)
	}
}

// Status is the lifecycle state of a credential. It is set at issuance and
// changed only by explicit patches.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusActive, StatusExpired, StatusRevoked:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unsupported status: "+s)
	}
}

// Credential is an issued claim held in the owner's wallet.
// VerificationHash and QRCode are display strings, not integrity proofs.
type Credential struct {
	entity.Meta
	CredentialType    CredentialType    `json:"credential_type"`
	IssuerName        string            `json:"issuer_name"`
	IssuerType        domain.IssuerType `json:"issuer_type"`
	CredentialData    json.RawMessage   `json:"credential_data"`
	IssueDate         domain.Date       `json:"issue_date"`
	ExpiryDate        domain.Date       `json:"expiry_date"`
	PrivacyLevel      PrivacyLevel      `json:"privacy_level"`
	VerificationHash  string            `json:"verification_hash"`
	QRCode            string            `json:"qr_code"`
	Status            Status            `json:"status"`
	VerificationCount int               `json:"verification_count"`
}

// Clone returns a deep copy.
func (c Credential) Clone() Credential {
	c.CredentialData = bytes.Clone(c.CredentialData)
	return c
}

// Details returns the free-text details captured at issuance.
func (c *Credential) Details() string {
	var data struct {
		Details string `json:"details"`
	}
	_ = json.Unmarshal(c.CredentialData, &data)
	return data.Details
}

// IssueCommand carries validated issuance input.
type IssueCommand struct {
	CredentialType CredentialType
	IssuerName     string
	IssuerType     domain.IssuerType
	Details        string
	IssueDate      domain.Date
	ExpiryDate     domain.Date
	PrivacyLevel   PrivacyLevel
}

// Update carries the patchable fields. Nil means "leave as is".
type Update struct {
	QRCode *string
	Status *Status
}

// Patch applies u and reports whether the record changed.
func (u Update) Patch(c *Credential) bool {
	changed := false
	if u.QRCode != nil && *u.QRCode != c.QRCode {
		c.QRCode = *u.QRCode
		changed = true
	}
	if u.Status != nil && *u.Status != c.Status {
		c.Status = *u.Status
		changed = true
	}
	return changed
}

// ListQuery narrows the wallet listing.
type ListQuery struct {
	Search string
	Type   string
	Sort   entity.Sort
	Limit  int
}
