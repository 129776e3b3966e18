package service

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	mrand "math/rand/v2"
	"strings"

	"identrust/internal/identity/models"
)

// randomHex returns "0x" followed by 2n lowercase hex digits read from r.
func randomHex(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// NewWalletAddress returns a random 20-byte address such as "0x9f...".
func NewWalletAddress() (string, error) {
	return randomHex(rand.Reader, 20)
}

// NewIdentityHash returns a random 32-byte hash such as "0x3c...".
func NewIdentityHash() (string, error) {
	return randomHex(rand.Reader, 32)
}

// SuggestBackupPhrase returns the phrase words in a random order.
func SuggestBackupPhrase() string {
	words := make([]string, len(models.PhraseWords))
	copy(words, models.PhraseWords)
	mrand.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	return strings.Join(words[:models.PhraseLength], " ")
}
