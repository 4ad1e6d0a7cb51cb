package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"datapack/internal/middleware"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	AllowedOrigins []string
	RateLimit      middleware.RateLimitConfig
	MaxBodyBytes   int64
	// APIKeyHashes guards /v1 when non-empty. /healthz stays open.
	APIKeyHashes []string
	Logger       *slog.Logger
}

// NewRouter wires h behind the request-id, logging, recovery, CORS, rate
// limit, body size and API key middleware. ctx bounds the rate limiter's background
// cleanup.
func NewRouter(ctx context.Context, h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader, middleware.APIKeyHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				req.Body = http.MaxBytesReader(w, req.Body, cfg.MaxBodyBytes)
				next.ServeHTTP(w, req)
			})
		})
	}

	h.Mount(r, middleware.APIKeyAuth(cfg.APIKeyHashes))
	return r
}
