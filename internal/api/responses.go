// Package api provides HTTP handlers and routing for the SafeBridge service.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// APIError is the JSON error body returned by every failing endpoint.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Standard error codes.
const (
	ErrCodeBadRequest  = "BadRequest"
	ErrCodeNotFound    = "NotFound"
	ErrCodeServerError = "ServerError"
)

// WriteJSON writes a JSON response with the given status code and value.
// If encoding fails, it logs the error and returns it.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response",
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

// WriteGeoJSON writes raw GeoJSON bytes with the application/geo+json media
// type.
func WriteGeoJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write GeoJSON response",
			slog.String("error", err.Error()),
		)
	}
}

// WriteError writes a structured error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	errResp := APIError{
		Code:        code,
		Description: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("failed to encode error response",
			slog.String("error", err.Error()),
		)
	}
}

// WriteBadRequest writes a 400 Bad Request error response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// WriteNotFound writes a 404 Not Found error response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeServerError, message)
}
