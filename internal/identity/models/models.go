// Package models holds the wallet holder's identity record.
package models

import (
	"fmt"
	"strings"

	"identrust/internal/entity"
	dErrors "identrust/pkg/domain-errors"
)

// Level is the assurance level of an identity.
type Level string

const (
	LevelUnverified Level = "unverified"
	LevelBasic      Level = "basic"
	LevelEnhanced   Level = "enhanced"
	LevelPremium    Level = "premium"
)

// Label is the dashboard wording for a level. Unknown and empty levels read
// as unverified.
func (l Level) Label() string {
	switch l {
	case LevelPremium:
		return "Premium Verified"
	case LevelEnhanced:
		return "Enhanced"
	case LevelBasic:
		return "Basic Verified"
	default:
		return "Unverified"
	}
}

// Identity is the holder's profile. Each owner has at most one.
// WalletAddress and IdentityHash are random display strings.
type Identity struct {
	entity.Meta
	FullName          string `json:"full_name"`
	Nationality       string `json:"nationality"`
	WalletAddress     string `json:"wallet_address"`
	IdentityHash      string `json:"identity_hash"`
	VerificationLevel Level  `json:"verification_level"`
	BackupPhrase      string `json:"backup_phrase"`
}

// OwnerKey is the uniqueness key of identities.
func OwnerKey(i *Identity) string {
	return i.CreatedBy
}

// SaveCommand carries the editable settings. An empty BackupPhrase keeps
// the stored phrase, or generates one for a new identity.
type SaveCommand struct {
	FullName     string
	Nationality  string
	BackupPhrase string
}

// Apply copies the editable fields onto i and reports whether it changed.
func (c SaveCommand) Apply(i *Identity) bool {
	changed := false
	if i.FullName != c.FullName {
		i.FullName = c.FullName
		changed = true
	}
	if i.Nationality != c.Nationality {
		i.Nationality = c.Nationality
		changed = true
	}
	if c.BackupPhrase != "" && i.BackupPhrase != c.BackupPhrase {
		i.BackupPhrase = c.BackupPhrase
		changed = true
	}
	return changed
}

// PhraseWords are the words backup phrases are drawn from.
var PhraseWords = []string{
	"ocean", "quantum", "bridge", "secure", "digital", "trust",
	"verify", "private", "chain", "identity", "proof", "key",
}

// PhraseLength is the number of words in a backup phrase.
const PhraseLength = 12

// NormalizePhrase collapses whitespace and lower-cases a phrase.
func NormalizePhrase(p string) string {
	return strings.ToLower(strings.Join(strings.Fields(p), " "))
}

// ValidatePhrase accepts an empty phrase (one is generated) or exactly
// PhraseLength words.
func ValidatePhrase(p string) error {
	if n := len(strings.Fields(p)); n != 0 && n != PhraseLength {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("backup_phrase must have %d words, got %d", PhraseLength, n))
	}
	return nil
}
