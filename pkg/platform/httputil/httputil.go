// Package httputil centralizes JSON response envelopes so every handler
// translates domain errors the same way.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "fakturo/pkg/domain-errors"
)

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// StatusForError returns the HTTP status a domain error maps to. Handlers
// that render their own body use it to keep status mapping consistent with
// WriteError.
func StatusForError(err error) int {
	return dErrors.ToHTTPStatus(dErrors.CodeOf(err))
}

// WriteError translates a domain error into a JSON error envelope. Internal
// errors omit the description so infrastructure details never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{
		"error": string(code),
	}
	if code != dErrors.CodeInternal {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
