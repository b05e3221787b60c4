// Package api writes the JSON envelopes shared by every endpoint.
//
// Success responses carry {"success": true, ...}; error responses carry
// {"success": false, "error": "...", "details": {...}} with an appropriate
// 4xx/5xx status. Error bodies never include stack traces or secrets.
package api

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string, details map[string]any) {
	WriteJSON(w, status, ErrorResponse{Success: false, Error: message, Details: details})
}

// Convenience helpers

func BadRequest(w http.ResponseWriter, message string, details map[string]any) {
	WriteError(w, http.StatusBadRequest, message, details)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, nil)
}

func RateLimited(w http.ResponseWriter, message string, details map[string]any) {
	WriteError(w, http.StatusTooManyRequests, message, details)
}

func Internal(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	WriteError(w, http.StatusInternalServerError, message, nil)
}
