package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/parley-protocol/parley/internal/api/middleware"
	"github.com/parley-protocol/parley/internal/bot"
	"github.com/parley-protocol/parley/internal/config"
	"github.com/parley-protocol/parley/internal/handlers"
	"github.com/parley-protocol/parley/internal/hub"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/store"
	"github.com/parley-protocol/parley/internal/verify"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, logger zerolog.Logger, db store.DataStore, redisStore *store.RedisStore, keys keyring.Provider, fanout *hub.Hub, responder *bot.Responder) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(256 * 1024)) // envelopes carry PEM keys and base64 signatures
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	limiter := middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimiterConfig{
		Whitelist:        cfg.RateLimitWhitelist,
		AutoBlockEnabled: cfg.AutoBlockEnabled,
	})
	r.Use(limiter.Middleware)

	// CORS - allow all origins (participants connect from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Parley-Participant"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	verifier := verify.NewService(keys)
	h := handlers.NewHandler(db, redisStore, verifier, keys, fanout, responder)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Registration and directory
	r.Post("/register", h.Register)
	r.Get("/who/{id}", h.Who)

	// Signed messages
	r.Post("/messages", h.PostMessage)
	r.Get("/messages", h.GetMessages)

	// Signature verification
	r.Post("/verify", h.VerifyMessage)

	// Real-time fan-out
	r.Get("/ws", fanout.Attach)

	return r
}
