package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	MongoURI string `envconfig:"MONGO_URI" required:"true"`
	MongoDB  string `envconfig:"MONGO_DB" default:"shoescout"`

	// Retail search API (RapidAPI StockX-style)
	StockXAPIHost string `envconfig:"STOCKX_API_HOST" required:"true"`
	StockXAPIKey  string `envconfig:"STOCKX_API_KEY" required:"true"`

	// Resell price API (RapidAPI SneakerDB-style)
	SneakerDBAPIHost string `envconfig:"SNEAKER_DB_API_HOST" required:"true"`
	SneakerDBAPIKey  string `envconfig:"SNEAKER_DB_API_KEY" required:"true"`

	// Auth0 settings. When both are empty and the environment is development,
	// the server falls back to a verification-free dev authenticator.
	Auth0Audience      string `envconfig:"AUTH0_AUDIENCE"`
	Auth0IssuerBaseURL string `envconfig:"AUTH0_ISSUER_BASE_URL"`

	SearchCacheTTLSec int `envconfig:"SEARCH_CACHE_TTL_SEC" default:"3600"`

	// Outbound HTTP retry settings
	HTTPMaxRetries   int `envconfig:"HTTP_MAX_RETRIES" default:"3"`
	HTTPRetryDelayMs int `envconfig:"HTTP_RETRY_DELAY_MS" default:"1000"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
