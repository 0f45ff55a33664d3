package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shoescout/internal/logger"
	"shoescout/internal/middleware"
	"shoescout/internal/model"
	"shoescout/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	user         *model.User
	err          error
	savedSize    float64
	savedPrefs   []string
	addedShoe    model.FavoriteShoe
	removedTitle string
}

func (f *fakeUserService) GetShoeSize(ctx context.Context, auth0ID string) (*model.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) SaveShoeSize(ctx context.Context, auth0ID string, size float64) (*model.User, error) {
	f.savedSize = size
	return f.user, f.err
}

func (f *fakeUserService) GetPreferences(ctx context.Context, auth0ID string) ([]string, error) {
	if f.user == nil {
		return []string{}, f.err
	}
	return f.user.Preferences, f.err
}

func (f *fakeUserService) SavePreferences(ctx context.Context, auth0ID string, preferences []string) (*model.User, error) {
	f.savedPrefs = preferences
	return f.user, f.err
}

func (f *fakeUserService) GetFavorites(ctx context.Context, auth0ID string) ([]model.FavoriteShoe, error) {
	if f.user == nil {
		return []model.FavoriteShoe{}, f.err
	}
	return f.user.Favorites, f.err
}

func (f *fakeUserService) AddFavorite(ctx context.Context, auth0ID string, shoe model.FavoriteShoe) (*model.User, error) {
	f.addedShoe = shoe
	return f.user, f.err
}

func (f *fakeUserService) RemoveFavorite(ctx context.Context, auth0ID, title string) (*model.User, error) {
	f.removedTitle = title
	return f.user, f.err
}

func (f *fakeUserService) CreateLegacyUser(ctx context.Context, username string, shoeSize float64) (*model.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) GetLegacyUser(ctx context.Context, username string) (*model.User, error) {
	return f.user, f.err
}

func floatPtr(f float64) *float64 { return &f }

func newUserHandler(svc service.UserService) *UserHandler {
	return NewUserHandler(svc, validator.New(validator.WithRequiredStructEnabled()), logger.New())
}

// authedRequest builds a request carrying the auth0 subject the way the auth
// middleware would.
func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, "auth0|abc123")
	return r.WithContext(ctx)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestSaveShoeSizeAcceptsValidSizes(t *testing.T) {
	for _, size := range []float64{0.5, 9, 9.5, 15} {
		t.Run(fmt.Sprintf("%v", size), func(t *testing.T) {
			svc := &fakeUserService{user: &model.User{Auth0ID: "auth0|abc123", ShoeSize: floatPtr(size)}}
			h := newUserHandler(svc)

			rec := httptest.NewRecorder()
			body := fmt.Sprintf(`{"shoeSize": %v}`, size)
			h.handleShoeSize(rec, authedRequest(http.MethodPost, "/shoe-size", body))

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, size, svc.savedSize)
		})
	}
}

func TestSaveShoeSizeRejectsInvalidSizes(t *testing.T) {
	tests := []struct {
		body    string
		message string
	}{
		{`{"shoeSize": "nine"}`, "Shoe size must be a number"},
		{`{}`, "Shoe size is required"},
		{`{"shoeSize": 0}`, "Shoe size must be between 0 and 15"},
		{`{"shoeSize": -1}`, "Shoe size must be between 0 and 15"},
		{`{"shoeSize": 15.5}`, "Shoe size must be between 0 and 15"},
		{`{"shoeSize": 16}`, "Shoe size must be between 0 and 15"},
		{`{"shoeSize": 9.3}`, "Shoe size must be a whole number or end with .5"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			svc := &fakeUserService{}
			h := newUserHandler(svc)

			rec := httptest.NewRecorder()
			h.handleShoeSize(rec, authedRequest(http.MethodPost, "/shoe-size", tt.body))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tt.message, errorMessage(t, rec))
		})
	}
}

func TestGetShoeSizeNotFound(t *testing.T) {
	svc := &fakeUserService{err: service.ErrUserNotFound}
	h := newUserHandler(svc)

	rec := httptest.NewRecorder()
	h.handleShoeSize(rec, authedRequest(http.MethodGet, "/shoe-size", ""))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "No shoe size found for this user", body["message"])
	require.Equal(t, "auth0|abc123", body["auth0Id"])
}

func TestShoeSizeRequiresAuthContext(t *testing.T) {
	h := newUserHandler(&fakeUserService{})

	rec := httptest.NewRecorder()
	h.handleShoeSize(rec, httptest.NewRequest(http.MethodGet, "/shoe-size", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSavePreferences(t *testing.T) {
	svc := &fakeUserService{user: &model.User{
		Auth0ID:     "auth0|abc123",
		Preferences: []string{"Nike", "Adidas"},
	}}
	h := newUserHandler(svc)

	rec := httptest.NewRecorder()
	h.handlePreferences(rec, authedRequest(http.MethodPost, "/user-preferences",
		`{"preferences": ["Nike", "Adidas"]}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Nike", "Adidas"}, svc.savedPrefs)
}

func TestSavePreferencesRejectsMoreThanThree(t *testing.T) {
	h := newUserHandler(&fakeUserService{})

	rec := httptest.NewRecorder()
	h.handlePreferences(rec, authedRequest(http.MethodPost, "/user-preferences",
		`{"preferences": ["Nike", "Adidas", "Puma", "Vans"]}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Maximum 3 brand preferences allowed", errorMessage(t, rec))
}

func TestSavePreferencesRejectsNonArray(t *testing.T) {
	h := newUserHandler(&fakeUserService{})

	rec := httptest.NewRecorder()
	h.handlePreferences(rec, authedRequest(http.MethodPost, "/user-preferences",
		`{"preferences": "Nike"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Preferences must be an array", errorMessage(t, rec))
}

func TestAddFavorite(t *testing.T) {
	svc := &fakeUserService{user: &model.User{
		Auth0ID:   "auth0|abc123",
		Favorites: []model.FavoriteShoe{{Title: "Nike Dunk Low"}},
	}}
	h := newUserHandler(svc)

	rec := httptest.NewRecorder()
	h.handleFavorites(rec, authedRequest(http.MethodPost, "/favorites",
		`{"title": "Nike Dunk Low", "brand": "Nike", "retail_price": 110, "sku": "DD1391-100"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Nike Dunk Low", svc.addedShoe.Title)
	require.Equal(t, 110.0, svc.addedShoe.RetailPrice)
}

func TestAddFavoriteRequiresTitle(t *testing.T) {
	h := newUserHandler(&fakeUserService{})

	rec := httptest.NewRecorder()
	h.handleFavorites(rec, authedRequest(http.MethodPost, "/favorites", `{"brand": "Nike"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Valid shoe data is required", errorMessage(t, rec))
}

func TestRemoveFavoriteUsesPathTitle(t *testing.T) {
	svc := &fakeUserService{user: &model.User{Auth0ID: "auth0|abc123", Favorites: []model.FavoriteShoe{}}}
	h := newUserHandler(svc)

	rec := httptest.NewRecorder()
	h.removeFavorite(rec, authedRequest(http.MethodDelete, "/favorites/Nike%20Dunk%20Low", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Nike Dunk Low", svc.removedTitle)
}

func TestAuthCheck(t *testing.T) {
	h := newUserHandler(&fakeUserService{})

	rec := httptest.NewRecorder()
	h.authCheck(rec, authedRequest(http.MethodGet, "/auth-check", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Authentication successful", body["message"])
	require.Equal(t, "auth0|abc123", body["auth0Id"])
	require.NotEmpty(t, body["timestamp"])
}

func TestCreateLegacyUser(t *testing.T) {
	svc := &fakeUserService{user: &model.User{Username: "jordanfan", ShoeSize: floatPtr(10.5)}}
	h := newUserHandler(svc)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"username": "jordanfan", "shoeSize": 10.5}`))
	h.createLegacyUser(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestGetLegacyUserNotFound(t *testing.T) {
	svc := &fakeUserService{err: service.ErrUserNotFound}
	h := newUserHandler(svc)

	rec := httptest.NewRecorder()
	h.getLegacyUser(rec, httptest.NewRequest(http.MethodGet, "/users/ghost", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", errorMessage(t, rec))
}
