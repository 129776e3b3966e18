package audit

import "time"

// Event records a state-changing action. It is transport-agnostic so stores
// and forwarders can fan it out.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Owner      string            `json:"owner"`
	Action     Action            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	RequestID  string            `json:"request_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type Action string

const (
	ActionCredentialIssued     Action = "credential_issued"
	ActionCredentialUpdated    Action = "credential_updated"
	ActionCredentialExported   Action = "credential_exported"
	ActionVerificationRecorded Action = "verification_recorded"
	ActionIdentityCreated      Action = "identity_created"
	ActionIdentityUpdated      Action = "identity_updated"
	ActionIdentityExported     Action = "identity_exported"
)
