package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shoescout/internal/api/v1/dto"
	"shoescout/internal/api/v1/handler"
	"shoescout/internal/cache"
	"shoescout/internal/config"
	"shoescout/internal/middleware"
	"shoescout/internal/repository"
	"shoescout/internal/service"
	"shoescout/internal/sneaker"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	appAuthor    = "Group 11"
	appVersion   = "1.0.0"
	appGithubURL = "https://github.com/CAPSTONE-2025/Group_11"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *mongo.Client, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initialized")

	// 1. Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("MongoDB connected successfully")

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureUserIndexes(ctx, db); err != nil {
		return nil, nil, err
	}

	// 2. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 3. Initialize outbound API client and search cache
	sneakerClient := sneaker.NewClient(sneaker.Options{
		SearchHost: cfg.StockXAPIHost,
		SearchKey:  cfg.StockXAPIKey,
		PriceHost:  cfg.SneakerDBAPIHost,
		PriceKey:   cfg.SneakerDBAPIKey,
		MaxRetries: cfg.HTTPMaxRetries,
		RetryDelay: time.Duration(cfg.HTTPRetryDelayMs) * time.Millisecond,
	}, logger)
	searchCache := cache.NewSearchCache(time.Duration(cfg.SearchCacheTTLSec) * time.Second)

	// 4. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(db)

	searchSvc := service.NewSearchService(sneakerClient, searchCache, logger)
	userSvc := service.NewUserService(userRepo)
	recommendationSvc := service.NewRecommendationService(userRepo, sneakerClient, logger)

	shoeHandler := handler.NewShoeHandler(searchSvc, logger)
	userHandler := handler.NewUserHandler(userSvc, validate, logger)
	recommendationHandler := handler.NewRecommendationHandler(recommendationSvc, logger)

	// 5. Pick the authenticator
	authenticator, err := buildAuthenticator(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	authMiddleware := middleware.AuthMiddleware(authenticator, logger)

	// 6. Create ServeMux router
	mux := http.NewServeMux()

	shoeHandler.RegisterRoutes(mux)
	userHandler.RegisterLegacyRoutes(mux)

	// Protected routes live under /api
	apiMux := http.NewServeMux()
	userHandler.RegisterProtectedRoutes(apiMux, authMiddleware)
	recommendationHandler.RegisterProtectedRoutes(apiMux, authMiddleware)
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	// Health check
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(dto.HealthResponseDTO{
			Status:    "ok",
			Author:    appAuthor,
			GithubURL: appGithubURL,
			Version:   appVersion,
		})
	})

	// 7. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), client, nil
}

// buildAuthenticator returns the real Auth0 verifier whenever the tenant is
// configured. The verification-free dev stub is only ever reachable in a
// development environment; everywhere else missing Auth0 settings are a
// configuration error, never a silent bypass.
func buildAuthenticator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (middleware.Authenticator, error) {
	if cfg.Auth0Audience != "" && cfg.Auth0IssuerBaseURL != "" {
		return middleware.NewJWTAuthenticator(ctx, cfg.Auth0Audience, cfg.Auth0IssuerBaseURL)
	}
	if cfg.Environment != "development" {
		return nil, errors.New("AUTH0_AUDIENCE and AUTH0_ISSUER_BASE_URL are required outside development")
	}
	logger.Warn().Msg("Auth0 not configured; using the dev authenticator. All /api requests are accepted without verification")
	return middleware.DevAuthenticator{}, nil
}
