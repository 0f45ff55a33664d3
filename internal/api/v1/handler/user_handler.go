package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"shoescout/internal/api/v1/dto"
	"shoescout/internal/middleware"
	"shoescout/internal/model"
	"shoescout/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService service.UserService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewUserHandler(userService service.UserService, v *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{userService: userService, validate: v, logger: logger}
}

// RegisterProtectedRoutes mounts the Auth0-guarded routes. The mux is served
// under /api with the prefix already stripped.
func (h *UserHandler) RegisterProtectedRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/shoe-size", authMw(http.HandlerFunc(h.handleShoeSize)))
	mux.Handle("/user-preferences", authMw(http.HandlerFunc(h.handlePreferences)))
	mux.Handle("/favorites", authMw(http.HandlerFunc(h.handleFavorites)))
	mux.Handle("/favorites/", authMw(http.HandlerFunc(h.removeFavorite)))
	mux.Handle("/auth-check", authMw(http.HandlerFunc(h.authCheck)))
}

// RegisterLegacyRoutes mounts the public username-keyed routes kept for
// backward compatibility.
func (h *UserHandler) RegisterLegacyRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/users", h.createLegacyUser)
	mux.HandleFunc("/users/", h.getLegacyUser)
}

func (h *UserHandler) handleShoeSize(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getShoeSize(w, r)
	case http.MethodPost:
		h.saveShoeSize(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *UserHandler) getShoeSize(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.GetShoeSize(r.Context(), auth0ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"message": "No shoe size found for this user",
				"auth0Id": auth0ID,
			})
			return
		}
		h.logger.Error().Err(err).Msg("Error fetching shoe size")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ShoeSizeResponseDTO{
		Auth0ID:  user.Auth0ID,
		ShoeSize: *user.ShoeSize,
	})
}

func (h *UserHandler) saveShoeSize(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.ShoeSizeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Shoe size must be a number")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Shoe size is required")
		return
	}

	size := *req.ShoeSize
	if size <= 0 || size > 15 {
		writeError(w, http.StatusBadRequest, "Shoe size must be between 0 and 15")
		return
	}
	// Whole or half sizes only
	if math.Mod(size*10, 5) != 0 {
		writeError(w, http.StatusBadRequest, "Shoe size must be a whole number or end with .5")
		return
	}

	user, err := h.userService.SaveShoeSize(r.Context(), auth0ID, size)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error saving shoe size")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ShoeSizeResponseDTO{
		Auth0ID:  user.Auth0ID,
		ShoeSize: *user.ShoeSize,
		Message:  "Shoe size saved successfully",
	})
}

func (h *UserHandler) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getPreferences(w, r)
	case http.MethodPost:
		h.savePreferences(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *UserHandler) getPreferences(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	preferences, err := h.userService.GetPreferences(r.Context(), auth0ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error fetching user preferences")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PreferencesResponseDTO{
		Auth0ID:     auth0ID,
		Preferences: preferences,
	})
}

func (h *UserHandler) savePreferences(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.PreferencesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Preferences must be an array")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			writeError(w, http.StatusBadRequest, "Maximum 3 brand preferences allowed")
			return
		}
		writeError(w, http.StatusBadRequest, "Preferences must be an array")
		return
	}

	user, err := h.userService.SavePreferences(r.Context(), auth0ID, *req.Preferences)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error saving user preferences")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PreferencesResponseDTO{
		Auth0ID:     user.Auth0ID,
		Preferences: user.Preferences,
		Message:     "Brand preferences saved successfully",
	})
}

func (h *UserHandler) handleFavorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getFavorites(w, r)
	case http.MethodPost:
		h.addFavorite(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *UserHandler) getFavorites(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	favorites, err := h.userService.GetFavorites(r.Context(), auth0ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error fetching favorites")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FavoritesResponseDTO{
		Auth0ID:   auth0ID,
		Favorites: favorites,
	})
}

func (h *UserHandler) addFavorite(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.FavoriteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Valid shoe data is required")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Valid shoe data is required")
		return
	}

	user, err := h.userService.AddFavorite(r.Context(), auth0ID, model.FavoriteShoe{
		Title:       req.Title,
		Brand:       req.Brand,
		RetailPrice: req.RetailPrice,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Error adding favorite")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FavoritesResponseDTO{
		Auth0ID:   user.Auth0ID,
		Favorites: user.Favorites,
		Message:   "Shoe added to favorites successfully",
	})
}

func (h *UserHandler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	title := strings.TrimPrefix(r.URL.Path, "/favorites/")
	if title == "" {
		http.NotFound(w, r)
		return
	}

	user, err := h.userService.RemoveFavorite(r.Context(), auth0ID, title)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error().Err(err).Msg("Error removing favorite")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FavoritesResponseDTO{
		Auth0ID:   user.Auth0ID,
		Favorites: user.Favorites,
		Message:   "Shoe removed from favorites successfully",
	})
}

func (h *UserHandler) authCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	auth0ID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || auth0ID == "" {
		http.Error(w, "Unauthorized: user ID not found in context", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthCheckResponseDTO{
		Message:   "Authentication successful",
		Auth0ID:   auth0ID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *UserHandler) createLegacyUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.LegacyUserCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Username and shoe size are required")
		return
	}

	user, err := h.userService.CreateLegacyUser(r.Context(), req.Username, *req.ShoeSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error creating user")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusCreated, dto.LegacyUserResponseDTO{
		Username: user.Username,
		ShoeSize: user.ShoeSize,
	})
}

func (h *UserHandler) getLegacyUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	username := strings.TrimPrefix(r.URL.Path, "/users/")
	if username == "" {
		http.NotFound(w, r)
		return
	}

	user, err := h.userService.GetLegacyUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error().Err(err).Msg("Error fetching user")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, dto.LegacyUserResponseDTO{
		Username: user.Username,
		ShoeSize: user.ShoeSize,
	})
}
