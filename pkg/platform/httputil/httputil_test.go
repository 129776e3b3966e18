package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/requestcontext"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{dErrors.New(dErrors.CodeNotFound, "credential not found"), http.StatusNotFound, "not_found"},
		{dErrors.New(dErrors.CodeValidation, "hash is required"), http.StatusBadRequest, "validation_error"},
		{dErrors.New(dErrors.CodeBadRequest, "bad id"), http.StatusBadRequest, "bad_request"},
		{dErrors.New(dErrors.CodeConflict, "exists"), http.StatusConflict, "conflict"},
		{dErrors.New(dErrors.CodeInvalidState, "immutable"), http.StatusConflict, "invalid_state"},
		{dErrors.New(dErrors.CodeUnauthorized, "no token"), http.StatusUnauthorized, "unauthorized"},
		{dErrors.New(dErrors.CodeTimeout, "cancelled"), http.StatusGatewayTimeout, "timeout"},
		{dErrors.Wrap(errors.New("disk"), dErrors.CodeInternal, "failed to save"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeEnvelope(t, rec)["error"])
			assert.Equal(t, tt.status, StatusFor(tt.err))
		})
	}

	t.Run("plain errors hide their message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})
}

func TestWriteDownload(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDownload(rec, "image/svg+xml", "education-qr.svg", []byte("<svg/>"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="education-qr.svg"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "<svg/>", rec.Body.String())
}

func TestRequirePrincipal(t *testing.T) {
	_, err := RequirePrincipal(context.Background(), discardLogger())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	ctx := requestcontext.WithPrincipal(context.Background(), requestcontext.Principal{Email: "ada@example.com"})
	p, err := RequirePrincipal(ctx, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", p.Email)
}
