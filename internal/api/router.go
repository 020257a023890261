// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rsondhi/fundcompass/internal/engine"
	"github.com/rsondhi/fundcompass/internal/logging"
)

// Config holds the HTTP-facing settings.
type Config struct {
	// CORSOrigins lists the allowed origins; ["*"] allows all.
	CORSOrigins []string

	// RateLimit is the per-IP request budget per RatePeriod; 0 disables.
	RateLimit int

	// RatePeriod is the rate limiting window.
	RatePeriod time.Duration

	// MaxBatchProfiles caps one batch request; 0 means the default.
	MaxBatchProfiles int
}

// DefaultMaxBatchProfiles bounds batch fan-out per request.
const DefaultMaxBatchProfiles = 20

// Server wires the engine to the HTTP routes.
type Server struct {
	engine *engine.Engine
	cfg    Config
	logger zerolog.Logger
}

// NewServer creates a Server around a running engine.
func NewServer(eng *engine.Engine, cfg Config) *Server {
	if cfg.MaxBatchProfiles <= 0 {
		cfg.MaxBatchProfiles = DefaultMaxBatchProfiles
	}
	if cfg.RatePeriod <= 0 {
		cfg.RatePeriod = time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Server{
		engine: eng,
		cfg:    cfg,
		logger: logging.WithComponent("api"),
	}
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.cfg.CORSOrigins))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(instrument)
		r.Use(rateLimiter(s.cfg.RateLimit, s.cfg.RatePeriod))

		r.Post("/recommend", s.handleRecommend)
		r.Post("/recommend/batch", s.handleRecommendBatch)
		r.Get("/schemes/{schemeCode}", s.handleScheme)
		r.Get("/stats", s.handleStats)
		r.Get("/health", s.handleHealth)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
