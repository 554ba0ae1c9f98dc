package main

import (
	"net/http"

	"github.com/gorilla/mux"

	httphandlers "financeiro/internal/interfaces/http"
	"financeiro/internal/shared/config"
	"financeiro/internal/shared/logger"
	"financeiro/internal/shared/middleware"
	"financeiro/internal/shared/telemetry"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	log := logger.WithComponent("http")
	router := mux.NewRouter()

	// Probes and metrics stay outside auth
	router.HandleFunc("/health", httphandlers.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ready", httphandlers.HandleReady(deps.Pinger())).Methods(http.MethodGet)
	router.Handle("/metrics", telemetry.MetricsHandler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(deps.JWT))
	api.Use(middleware.Tracing)
	httphandlers.RegisterRoutes(api, deps.Handlers)

	// Apply global middleware
	var handler http.Handler = router
	handler = middleware.Logging(log)(handler)
	handler = middleware.CORS(cfg.Server.AllowedOrigins)(handler)
	handler = middleware.NoSniff(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Info().Msg("TLS security middleware enabled (HSTS)")
	}

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}

	return handler
}
