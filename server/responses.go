package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/jrsteele09/go-bucket-browser/internal/errors"
	"github.com/jrsteele09/go-bucket-browser/namespace"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

type errorResponse struct {
	Error string `json:"error"`
}

type batchErrorResponse struct {
	Error  string            `json:"error"`
	Report *namespace.Report `json:"report,omitempty"`
}

// errorStatus maps an error kind to its HTTP status. A non-empty message
// replaces the error text in the response.
var errorStatus = []struct {
	kind    error
	status  int
	message string
}{
	{apperrors.ErrInvalidRequest, http.StatusBadRequest, ""},
	{apperrors.ErrProviderError, http.StatusBadRequest, ""},
	{apperrors.ErrInvalidState, http.StatusUnauthorized, apperrors.ErrInvalidState.Error()},
	{apperrors.ErrTokenExchangeFailed, http.StatusUnauthorized, apperrors.ErrTokenExchangeFailed.Error()},
	{apperrors.ErrAuthenticationFailed, http.StatusUnauthorized, apperrors.ErrAuthenticationFailed.Error()},
	{apperrors.ErrNoSession, http.StatusUnauthorized, apperrors.ErrNoSession.Error()},
	{apperrors.ErrSessionNotFound, http.StatusUnauthorized, apperrors.ErrSessionNotFound.Error()},
	{apperrors.ErrSessionExpired, http.StatusUnauthorized, apperrors.ErrSessionExpired.Error()},
	{apperrors.ErrDomainRestricted, http.StatusForbidden, apperrors.ErrDomainRestricted.Error()},
	{apperrors.ErrObjectNotFound, http.StatusNotFound, ""},
	{apperrors.ErrEndpointNotFound, http.StatusNotFound, "Endpoint not found"},
	{apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, ""},
	{apperrors.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, ""},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// statusFor returns the HTTP status and client-facing message for err.
func statusFor(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, apperrors.ErrPayloadTooLarge.Error()
	}
	for _, e := range errorStatus {
		if apperrors.Is(err, e.kind) {
			if e.message != "" {
				return e.status, e.message
			}
			return e.status, err.Error()
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeBatchError reports a failed or partially failed batch along with
// whatever progress was made.
func writeBatchError(w http.ResponseWriter, err error, report *namespace.Report) {
	if report == nil {
		writeError(w, err)
		return
	}
	status, msg := statusFor(err)
	if apperrors.Is(err, apperrors.ErrPartialFailure) {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, batchErrorResponse{Error: msg, Report: report})
}

func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "invalid JSON body")
	}
	return nil
}
