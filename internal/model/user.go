package model

import "time"

// User represents a user in the system, keyed by their Auth0 subject.
type User struct {
	// omitempty keeps legacy username-only users out of the unique partial
	// index on auth0_id; an explicit "" would count as a string and collide.
	Auth0ID     string         `bson:"auth0_id,omitempty" json:"auth0Id"`
	Username    string         `bson:"username,omitempty" json:"username,omitempty"`
	ShoeSize    *float64       `bson:"shoe_size,omitempty" json:"shoeSize,omitempty"`
	Preferences []string       `bson:"preferences,omitempty" json:"preferences"`
	Favorites   []FavoriteShoe `bson:"favorites,omitempty" json:"favorites"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updated_at"`
}

// FavoriteShoe is a shoe a user has saved. Favorites are deduplicated by
// title.
type FavoriteShoe struct {
	Title       string `bson:"title" json:"title"`
	Brand       string `bson:"brand,omitempty" json:"brand,omitempty"`
	RetailPrice any    `bson:"retail_price,omitempty" json:"retail_price,omitempty"`
	SKU         string `bson:"sku,omitempty" json:"sku,omitempty"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`
}
