package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/validation"
)

type renameRequest struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`

	calls []string
}

func (r *renameRequest) Sanitize() {
	r.calls = append(r.calls, "sanitize")
	r.Name = strings.TrimSpace(r.Name)
}

func (r *renameRequest) Normalize() {
	r.calls = append(r.calls, "normalize")
	for i, t := range r.Tags {
		r.Tags[i] = strings.ToLower(t)
	}
}

func (r *renameRequest) Validate() error {
	r.calls = append(r.calls, "validate")
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type conflictRequest struct{}

func (conflictRequest) Validate() error {
	return dErrors.New(dErrors.CodeConflict, "already exists")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("runs preparation steps in order", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  Ada ","tags":["KYC"]}`))

		got, ok := DecodeAndPrepare[renameRequest](rec, req, discardLogger())

		require.True(t, ok)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, []string{"kyc"}, got.Tags)
		assert.Equal(t, []string{"sanitize", "normalize", "validate"}, got.calls)
	})

	t.Run("plain validation errors become validation_error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"   "}`))

		_, ok := DecodeAndPrepare[renameRequest](rec, req, discardLogger())

		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "name is required", body["error_description"])
	})

	t.Run("domain errors keep their code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))

		_, ok := DecodeAndPrepare[conflictRequest](rec, req, discardLogger())

		require.False(t, ok)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		status      int
		code        string
		description string
	}{
		{name: "malformed", body: `{"name":`, status: http.StatusBadRequest, code: "bad_request", description: "invalid request body"},
		{name: "empty", body: ``, status: http.StatusBadRequest, code: "bad_request", description: "request body is empty"},
		{name: "wrong type", body: `{"name":42}`, status: http.StatusBadRequest, code: "bad_request", description: "invalid request body"},
		{
			name:        "oversized",
			body:        `{"name":"` + strings.Repeat("x", validation.MaxBodySize) + `"}`,
			status:      http.StatusRequestEntityTooLarge,
			code:        "payload_too_large",
			description: "request body too large",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			got, ok := DecodeJSON[renameRequest](rec, req, discardLogger())

			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Equal(t, tt.status, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, tt.description, body["error_description"])
		})
	}
}

func TestPrepareRequestWithoutHooks(t *testing.T) {
	assert.NoError(t, PrepareRequest(&struct{ Name string }{}))
}
