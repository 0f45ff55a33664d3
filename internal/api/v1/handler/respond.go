package handler

import (
	"encoding/json"
	"net/http"

	"shoescout/internal/api/v1/dto"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the {error, details?} shape every error response uses.
func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	resp := dto.ErrorResponseDTO{Error: msg}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	writeJSON(w, status, resp)
}
