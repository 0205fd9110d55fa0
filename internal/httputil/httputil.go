// Package httputil centralizes JSON response envelopes and domain error
// translation so every handler returns consistent shapes.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "scribed/internal/domainerrors"
)

// WriteJSON encodes v with the given status. Encoding failures are ignored;
// the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error into an HTTP response.
// Internal errors omit the description so storage details never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := statusFor(code)

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body["error_description"] = de.Message
		}
	}
	WriteJSON(w, status, body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
