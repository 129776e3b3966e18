// Package domain holds value types shared across bounded contexts:
// prefixed record identifiers and civil dates.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "identrust/pkg/domain-errors"
)

// Prefix marks which entity an identifier belongs to, e.g. "cred_".
type Prefix string

const (
	PrefixIdentity     Prefix = "idn_"
	PrefixCredential   Prefix = "cred_"
	PrefixVerification Prefix = "ver_"
	PrefixInstitution  Prefix = "inst_"
)

// NewID returns a fresh identifier such as "cred_5f0c...".
func NewID(p Prefix) string {
	return string(p) + uuid.NewString()
}

// ParseID checks that s carries prefix p followed by a UUID. Use it at trust
// boundaries before touching a store.
func ParseID(p Prefix, s string) (string, error) {
	rest, ok := strings.CutPrefix(s, string(p))
	if !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid id: expected "+string(p)+" prefix")
	}
	if _, err := uuid.Parse(rest); err != nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid id format")
	}
	return s, nil
}
