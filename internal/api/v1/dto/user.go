package dto

import "shoescout/internal/model"

// ShoeSizeRequestDTO is used for incoming shoe-size saves
type ShoeSizeRequestDTO struct {
	ShoeSize *float64 `json:"shoeSize" validate:"required"`
}

// ShoeSizeResponseDTO is returned from shoe-size reads and saves
type ShoeSizeResponseDTO struct {
	Auth0ID  string  `json:"auth0Id"`
	ShoeSize float64 `json:"shoeSize"`
	Message  string  `json:"message,omitempty"`
}

type PreferencesRequestDTO struct {
	Preferences *[]string `json:"preferences" validate:"required,max=3"`
}

type PreferencesResponseDTO struct {
	Auth0ID     string   `json:"auth0Id"`
	Preferences []string `json:"preferences"`
	Message     string   `json:"message,omitempty"`
}

type FavoriteRequestDTO struct {
	Title       string `json:"title" validate:"required"`
	Brand       string `json:"brand"`
	RetailPrice any    `json:"retail_price"`
	SKU         string `json:"sku"`
	ImageURL    string `json:"image_url"`
}

type FavoritesResponseDTO struct {
	Auth0ID   string               `json:"auth0Id"`
	Favorites []model.FavoriteShoe `json:"favorites"`
	Message   string               `json:"message,omitempty"`
}

// LegacyUserCreateDTO feeds the username-keyed routes kept for backward
// compatibility.
type LegacyUserCreateDTO struct {
	Username string   `json:"username" validate:"required"`
	ShoeSize *float64 `json:"shoeSize" validate:"required"`
}

type LegacyUserResponseDTO struct {
	Username string   `json:"username"`
	ShoeSize *float64 `json:"shoeSize,omitempty"`
}

type AuthCheckResponseDTO struct {
	Message   string `json:"message"`
	Auth0ID   string `json:"auth0Id"`
	Timestamp string `json:"timestamp"`
}
