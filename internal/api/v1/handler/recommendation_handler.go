package handler

import (
	"net/http"

	"shoescout/internal/api/v1/dto"
	"shoescout/internal/middleware"
	"shoescout/internal/service"

	"github.com/rs/zerolog"
)

type RecommendationHandler struct {
	recommendationService service.RecommendationService
	logger                zerolog.Logger
}

func NewRecommendationHandler(recommendationService service.RecommendationService, logger zerolog.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService, logger: logger}
}

func (h *RecommendationHandler) RegisterProtectedRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/recommendations", authMw(http.HandlerFunc(h.getRecommendations)))
}

func (h *RecommendationHandler) getRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	shoes, message, err := h.recommendationService.Recommend(r.Context(), auth0ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error generating recommendations")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	recommendations := make([]dto.RecommendationShoeDTO, 0, len(shoes))
	for _, shoe := range shoes {
		recommendations = append(recommendations, dto.RecommendationShoeDTO{
			Title:       shoe.Title,
			RetailPrice: shoe.RetailPrice,
			Description: shoe.Description,
			SKU:         shoe.SKU,
			ImageURL:    shoe.ImageURL,
			Brand:       shoe.Brand,
		})
	}

	writeJSON(w, http.StatusOK, dto.RecommendationsResponseDTO{
		Recommendations: recommendations,
		Message:         message,
	})
}
