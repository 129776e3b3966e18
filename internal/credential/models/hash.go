package models

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Hash is the simulated "blockchain" fingerprint shown on credentials: a
// 32-bit rolling string hash h = h*31 + c over the UTF-16 code units of s,
// rendered as 0x plus eight lowercase hex digits. It is not collision
// resistant and must never be presented as a proof of integrity.
func Hash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	return fmt.Sprintf("0x%08x", uint32(h))
}

// MaskHash hides all but the 0x prefix and the last four characters.
func MaskHash(hash string) string {
	const visible = 4
	if len(hash) <= 2+visible {
		return hash
	}
	prefix := ""
	body := hash
	if hash[:2] == "0x" {
		prefix, body = "0x", hash[2:]
	}
	masked := make([]rune, 0, len(body))
	for range len(body) - visible {
		masked = append(masked, '•')
	}
	return prefix + string(masked) + body[len(body)-visible:]
}

// MaskQRCode replaces every occurrence of hash in a stored qr_code with its
// masked form, so a masked response does not leak the hash through the
// payload.
func MaskQRCode(qrCode, hash string) string {
	if hash == "" {
		return qrCode
	}
	return strings.ReplaceAll(qrCode, hash, MaskHash(hash))
}
