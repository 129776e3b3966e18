// Package models holds the verification log record and the canned results
// produced by the simulated verifier.
package models

import (
	"identrust/internal/entity"
)

// Type is what a verification checked.
type Type string

const (
	TypeAgeVerification    Type = "age_verification"
	TypeQualificationCheck Type = "qualification_check"
	TypeIdentityCheck      Type = "identity_check"
	TypeEligibilityCheck   Type = "eligibility_check"
)

// Result is the outcome recorded in the log.
type Result string

const (
	ResultVerified Result = "verified"
	ResultFailed   Result = "failed"
	ResultPending  Result = "pending"
)

// Method is how the credential was presented.
type Method string

const (
	MethodQRScan       Method = "qr_scan"
	MethodManualReview Method = "manual_review"
)

// Verification is an append-only log entry. CredentialID holds either a
// credential id or the raw hash the verifier typed in.
type Verification struct {
	entity.Meta
	CredentialID       string `json:"credential_id"`
	VerifierName       string `json:"verifier_name"`
	VerificationType   Type   `json:"verification_type"`
	VerificationResult Result `json:"verification_result"`
	VerificationMethod Method `json:"verification_method"`
	Location           string `json:"location"`
	IsOffline          bool   `json:"is_offline"`
}

// Outcome is what the verifier screen shows after a check.
type Outcome struct {
	CredentialType     string        `json:"credential_type"`
	IssuerName         string        `json:"issuer_name"`
	VerificationResult Result        `json:"verification_result"`
	VerificationMethod Method        `json:"verification_method"`
	IsOffline          bool          `json:"is_offline"`
	VerifierName       string        `json:"verifier_name"`
	Location           string        `json:"location"`
	Verification       *Verification `json:"verification"`
}

// ScanCredentialID is the credential every simulated scan resolves to.
const ScanCredentialID = "demo-credential-123"

// ScanOutcome is the canned result of a QR scan.
func ScanOutcome() Outcome {
	return Outcome{
		CredentialType:     "citizenship",
		IssuerName:         "Government of Demo Nation",
		VerificationResult: ResultVerified,
		VerificationMethod: MethodQRScan,
		IsOffline:          false,
		VerifierName:       "IDenTrust Scanner",
		Location:           "Current Device",
	}
}

// ManualOutcome is the canned result of a typed-in hash.
func ManualOutcome() Outcome {
	return Outcome{
		CredentialType:     "education",
		IssuerName:         "Demo University",
		VerificationResult: ResultVerified,
		VerificationMethod: MethodManualReview,
		IsOffline:          true,
		VerifierName:       "Manual Verification",
		Location:           "Hash Input",
	}
}

// Record builds the log entry for an outcome.
func (o Outcome) Record(credentialID string, t Type) *Verification {
	return &Verification{
		CredentialID:       credentialID,
		VerifierName:       o.VerifierName,
		VerificationType:   t,
		VerificationResult: o.VerificationResult,
		VerificationMethod: o.VerificationMethod,
		Location:           o.Location,
		IsOffline:          o.IsOffline,
	}
}
