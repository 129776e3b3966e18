// Package httputil holds the response helpers every handler shares: JSON
// bodies, downloads and the error envelope.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "identrust/pkg/domain-errors"
	"identrust/pkg/requestcontext"
)

// ErrorResponse is the error envelope of every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type errorMapping struct {
	status int
	code   string
}

var errorMappings = map[dErrors.Code]errorMapping{
	dErrors.CodeNotFound:     {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:   {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput: {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:   {http.StatusBadRequest, "validation_error"},
	dErrors.CodeConflict:     {http.StatusConflict, "conflict"},
	dErrors.CodeInvalidState: {http.StatusConflict, "invalid_state"},
	dErrors.CodeUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:    {http.StatusForbidden, "forbidden"},
	dErrors.CodeTimeout:      {http.StatusGatewayTimeout, "timeout"},
	dErrors.CodeUnavailable:  {http.StatusServiceUnavailable, "unavailable"},
	dErrors.CodeTooLarge:     {http.StatusRequestEntityTooLarge, "payload_too_large"},
}

var internalMapping = errorMapping{http.StatusInternalServerError, "internal_error"}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // headers already sent
}

// WriteDownload writes body as an attachment with the given file name.
func WriteDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body) //nolint:errcheck // headers already sent
}

// WriteError renders err as the error envelope. Only domain errors expose
// their message; anything else becomes a bare internal_error.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, internalMapping.status, ErrorResponse{Error: internalMapping.code})
		return
	}
	m := mappingFor(domainErr.Code)
	WriteJSON(w, m.status, ErrorResponse{Error: m.code, Description: domainErr.Message})
}

// StatusFor reports the HTTP status WriteError uses for err.
func StatusFor(err error) int {
	return mappingFor(dErrors.CodeOf(err)).status
}

func mappingFor(code dErrors.Code) errorMapping {
	if m, ok := errorMappings[code]; ok {
		return m
	}
	return internalMapping
}

// RequirePrincipal returns the authenticated caller. Reaching a handler
// without one means the route was mounted outside the auth group.
func RequirePrincipal(ctx context.Context, logger *slog.Logger) (requestcontext.Principal, error) {
	p, ok := requestcontext.PrincipalFrom(ctx)
	if !ok || p.Email == "" {
		if logger != nil {
			logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
				"request_id", requestcontext.RequestID(ctx))
		}
		return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return p, nil
}
