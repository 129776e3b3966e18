package models

import (
	"encoding/json"
	"fmt"
	"html"
)

// QRPayload is the opaque content encoded into a credential's QR code.
type QRPayload struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Issuer  string  `json:"issuer"`
	Hash    string  `json:"hash"`
	Expires *string `json:"expires"`
}

// NewQRPayload derives the payload from a credential whose id and hash are set.
func NewQRPayload(c *Credential) QRPayload {
	p := QRPayload{
		ID:     c.ID,
		Type:   string(c.CredentialType),
		Issuer: c.IssuerName,
		Hash:   c.VerificationHash,
	}
	if !c.ExpiryDate.IsZero() {
		exp := c.ExpiryDate.String()
		p.Expires = &exp
	}
	return p
}

// Encode renders the payload as the JSON string stored in qr_code.
func (p QRPayload) Encode() string {
	// All fields are strings, Marshal cannot fail.
	b, _ := json.Marshal(p)
	return string(b)
}

// PlaceholderSVG is the stylised QR badge offered for download. It is a
// picture of the credential type, not a scannable code.
func PlaceholderSVG(c *Credential) []byte {
	return fmt.Appendf(nil, `<svg width="200" height="200" xmlns="http://www.w3.org/2000/svg">
  <rect width="200" height="200" fill="white"/>
  <rect x="20" y="20" width="160" height="160" fill="black"/>
  <rect x="40" y="40" width="120" height="120" fill="white"/>
  <text x="100" y="105" text-anchor="middle" font-family="monospace" font-size="12" fill="black">QR Code</text>
  <text x="100" y="125" text-anchor="middle" font-family="monospace" font-size="8" fill="black">%s</text>
</svg>
`, html.EscapeString(string(c.CredentialType)))
}
