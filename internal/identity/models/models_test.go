package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, "Premium Verified", LevelPremium.Label())
	assert.Equal(t, "Enhanced", LevelEnhanced.Label())
	assert.Equal(t, "Basic Verified", LevelBasic.Label())
	assert.Equal(t, "Unverified", LevelUnverified.Label())
	assert.Equal(t, "Unverified", Level("").Label())
}

func TestSaveCommandApply(t *testing.T) {
	id := &Identity{FullName: "Ada", Nationality: "UK", BackupPhrase: "ocean key"}

	assert.False(t, SaveCommand{FullName: "Ada", Nationality: "UK"}.Apply(id), "empty phrase keeps the stored one")
	assert.Equal(t, "ocean key", id.BackupPhrase)

	assert.True(t, SaveCommand{FullName: "Ada Lovelace", Nationality: "UK"}.Apply(id))
	assert.Equal(t, "Ada Lovelace", id.FullName)
}

func TestNormalizePhrase(t *testing.T) {
	assert.Equal(t, "ocean quantum bridge", NormalizePhrase("  Ocean\tquantum   BRIDGE "))
}
