// Package shared centralizes JSON encoding and domain error translation so
// every handler produces the same response envelopes.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "certserve/pkg/domain-errors"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type dataBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dataBody{Success: true, Data: data})
}

// WriteError maps a domain error onto an HTTP status. When verbose is true
// (non-production) the underlying message is included in the body.
func WriteError(w http.ResponseWriter, err error, verbose bool) {
	code := dErrors.CodeOf(err)
	body := errorBody{Success: false, Error: string(code)}
	if verbose {
		body.Message = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(body)
}
