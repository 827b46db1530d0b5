package api

import (
	"encoding/json"
	"net/http"

	"github.com/marshallshelly/storefront/pkg/schema"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondMessage writes a JSON confirmation response.
func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondValidation writes the per-field validation errors with a 400.
func respondValidation(w http.ResponseWriter, errs schema.Errors) {
	respondJSON(w, http.StatusBadRequest, map[string]schema.Errors{"errors": errs})
}
