package models

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"identrust/internal/entity"
	"identrust/pkg/domain"
	dErrors "identrust/pkg/domain-errors"
)

var hashPattern = regexp.MustCompile(`^0x[0-9a-f]{8}$`)

func TestHash(t *testing.T) {
	t.Run("always eight lowercase hex digits", func(t *testing.T) {
		inputs := []string{
			"",
			"a",
			`{"credential_type":"education","issuer_name":"Demo University"}1767225600000`,
			strings.Repeat("overflow", 1000),
			"emoji 🎓 and accents é",
			"\x00\xff invalid utf8",
		}
		for _, in := range inputs {
			assert.Regexp(t, hashPattern, Hash(in), "input %q", in)
		}
	})

	t.Run("known values", func(t *testing.T) {
		assert.Equal(t, "0x00000000", Hash(""))
		assert.Equal(t, "0x00000061", Hash("a"))
		assert.Equal(t, "0x00000c21", Hash("ab"))
		assert.Equal(t, "0x05e918d2", Hash("hello"))
		// Wraps past the int32 range and renders as unsigned.
		assert.Equal(t, "0xfd4a5ceb", Hash("Demo University"))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Hash("same input"), Hash("same input"))
		assert.NotEqual(t, Hash("input 1"), Hash("input 2"))
	})

	t.Run("uses utf16 code units", func(t *testing.T) {
		// U+1F393 is a surrogate pair: 0xD83C 0xDF93.
		want := int32(0)
		for _, c := range []int32{0xD83C, 0xDF93} {
			want = want*31 + c
		}
		assert.Equal(t, Hash("🎓"), "0x"+leftPad(uint32(want)))
	})
}

func leftPad(v uint32) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = digits[v&0xf]
		v >>= 4
	}
	return string(out)
}

func TestMaskHash(t *testing.T) {
	assert.Equal(t, "0x••••5678", MaskHash("0x12345678"))
	assert.Equal(t, "0x1234", MaskHash("0x1234"))
	assert.Equal(t, "••••••ghij", MaskHash("abcdefghij"))
}

func TestMaskQRCode(t *testing.T) {
	qr := `{"id":"cred_1","type":"education","issuer":"Demo University","hash":"0x12345678","expires":null}`

	masked := MaskQRCode(qr, "0x12345678")
	assert.NotContains(t, masked, "0x12345678")
	assert.Contains(t, masked, `"hash":"0x••••5678"`)
	assert.Equal(t, qr, MaskQRCode(qr, ""))
}

func TestParseEnums(t *testing.T) {
	ct, err := ParseCredentialType("banking")
	require.NoError(t, err)
	assert.Equal(t, TypeBanking, ct)

	_, err = ParseCredentialType("passport")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	pl, err := ParsePrivacyLevel("")
	require.NoError(t, err)
	assert.Equal(t, PrivacySelective, pl)

	_, err = ParsePrivacyLevel("secret")
	assert.Error(t, err)

	st, err := ParseStatus("revoked")
	require.NoError(t, err)
	assert.Equal(t, StatusRevoked, st)

	_, err = ParseStatus("deleted")
	assert.Error(t, err)
}

func TestUpdatePatch(t *testing.T) {
	qr := `{"id":"cred_1"}`
	revoked := StatusRevoked
	c := &Credential{Status: StatusActive}

	assert.False(t, Update{}.Patch(c))
	assert.True(t, Update{QRCode: &qr}.Patch(c))
	assert.Equal(t, qr, c.QRCode)
	assert.False(t, Update{QRCode: &qr}.Patch(c), "same qr_code is not a change")
	assert.True(t, Update{Status: &revoked}.Patch(c))
	assert.Equal(t, StatusRevoked, c.Status)
}

func TestCloneAndDetails(t *testing.T) {
	c := Credential{CredentialData: json.RawMessage(`{"details":"BSc Computer Science"}`)}
	clone := c.Clone()
	clone.CredentialData[2] = 'X'

	assert.Equal(t, "BSc Computer Science", c.Details())
	assert.NotEqual(t, string(c.CredentialData), string(clone.CredentialData))
}

func TestQRPayload(t *testing.T) {
	c := &Credential{
		Meta:             entity.Meta{ID: "cred_1"},
		CredentialType:   TypeEducation,
		IssuerName:       "Demo University",
		VerificationHash: "0x0000abcd",
	}

	assert.JSONEq(t,
		`{"id":"cred_1","type":"education","issuer":"Demo University","hash":"0x0000abcd","expires":null}`,
		NewQRPayload(c).Encode())

	c.ExpiryDate = domain.NewDate(2030, time.June, 30)
	assert.JSONEq(t,
		`{"id":"cred_1","type":"education","issuer":"Demo University","hash":"0x0000abcd","expires":"2030-06-30"}`,
		NewQRPayload(c).Encode())
}

func TestPlaceholderSVG(t *testing.T) {
	svg := string(PlaceholderSVG(&Credential{CredentialType: TypeVotingEligibility}))
	assert.True(t, strings.HasPrefix(svg, `<svg width="200" height="200"`))
	assert.Contains(t, svg, ">QR Code<")
	assert.Contains(t, svg, ">voting_eligibility<")
}
