package handler

import (
	"errors"
	"net/http"
	"strings"

	"shoescout/internal/service"

	"github.com/rs/zerolog"
)

type ShoeHandler struct {
	searchService service.SearchService
	logger        zerolog.Logger
}

func NewShoeHandler(searchService service.SearchService, logger zerolog.Logger) *ShoeHandler {
	return &ShoeHandler{searchService: searchService, logger: logger}
}

// RegisterRoutes mounts the public search routes
func (h *ShoeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/shoes/", h.search)
	mux.HandleFunc("/debug-api/", h.debug)
}

func (h *ShoeHandler) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	query := strings.TrimPrefix(r.URL.Path, "/shoes/")
	if query == "" {
		http.NotFound(w, r)
		return
	}

	results, err := h.searchService.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrNoShoesFound) {
			writeError(w, http.StatusNotFound, "No shoes found.")
			return
		}
		h.logger.Error().Err(err).Str("query", query).Msg("Search failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch shoe data")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// debug exposes the raw price-API payload next to its normalized form, for
// diagnosing response shapes we have not seen before.
func (h *ShoeHandler) debug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	query := strings.TrimPrefix(r.URL.Path, "/debug-api/")
	if query == "" {
		http.NotFound(w, r)
		return
	}

	result, err := h.searchService.DebugSearch(r.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoShoesFound):
			writeError(w, http.StatusNotFound, "No shoes found.")
		case errors.Is(err, service.ErrNoSKUFound):
			writeError(w, http.StatusNotFound, "No SKU found for shoe")
		case errors.Is(err, service.ErrPriceAPIFailed):
			h.logger.Error().Err(err).Str("query", query).Msg("Price API call failed")
			writeError(w, http.StatusInternalServerError, "API call failed", err.Error())
		default:
			h.logger.Error().Err(err).Str("query", query).Msg("Debug fetch failed")
			writeError(w, http.StatusInternalServerError, "Failed to fetch data", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
