// Package httpjson holds small helpers shared by the REST handlers.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// Respond writes payload as JSON with the given status code.
func Respond(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError writes a JSON error body with the given status code.
func RespondError(w http.ResponseWriter, code int, message string) {
	Respond(w, code, map[string]string{"error": message})
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
