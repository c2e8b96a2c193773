package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"infinite-experiment/clanhall/internal/api"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/middleware"
)

func RegisterRoutes(deps *api.Dependencies) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.InFlightMiddleware(deps.Metrics))
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Specs.Origins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			constants.HeaderAPIKey, constants.HeaderServerID, constants.HeaderDiscordID, constants.HeaderDiscordAdmin,
		},
		ExposedHeaders:   []string{constants.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps.HealthChecks(), deps.UpSince))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewRateLimiter(deps.Specs.RateLimitPerSecond, deps.Specs.RateLimitBurst)
	RegisterAPIRoutes(r, deps, handlers, limiter)

	logging.Info("Router initialized", "cors_origins", deps.Specs.Origins())
	return r
}
