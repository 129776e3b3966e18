package service

import (
	"strings"

	"identrust/internal/credential/models"
)

// TypeAll disables the type predicate.
const TypeAll = "all"

// Filter keeps credentials whose issuer name or type contains search
// (case-insensitive) and whose type equals credType. An empty credType or
// TypeAll matches every type. Order is preserved and creds is not modified.
func Filter(creds []*models.Credential, search, credType string) []*models.Credential {
	needle := strings.ToLower(search)
	out := make([]*models.Credential, 0, len(creds))
	for _, c := range creds {
		matchesSearch := strings.Contains(strings.ToLower(c.IssuerName), needle) ||
			strings.Contains(strings.ToLower(string(c.CredentialType)), needle)
		matchesType := credType == "" || credType == TypeAll || string(c.CredentialType) == credType
		if matchesSearch && matchesType {
			out = append(out, c)
		}
	}
	return out
}
