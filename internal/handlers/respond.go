// Package handlers exposes the ranking engine over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vimmo/listingrank/internal/logger"
)

// ErrorResponse is the JSON error body of all endpoints
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.LogError(context.Background(), "Failed to encode response", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
