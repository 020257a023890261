// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Command server runs the FundCompass HTTP API with the periodic scheme
// refresh under one supervisor.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/rsondhi/fundcompass/internal/api"
	"github.com/rsondhi/fundcompass/internal/config"
	"github.com/rsondhi/fundcompass/internal/engine"
	"github.com/rsondhi/fundcompass/internal/ingest"
	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/refresh"
	"github.com/rsondhi/fundcompass/internal/selection"
	"github.com/rsondhi/fundcompass/internal/store"
	"github.com/rsondhi/fundcompass/internal/suitability"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Timestamp: true,
	})
	logger := logging.WithComponent("main")
	logger.Info().
		Str("addr", cfg.Addr()).
		Str("database", cfg.Database.Path).
		Dur("refresh_interval", cfg.Refresh.Interval).
		Msg("Starting fundcompass")

	repo, err := store.Open(store.Config{Path: cfg.Database.Path})
	if err != nil {
		return fmt.Errorf("opening scheme store: %w", err)
	}
	defer repo.Close()

	client := ingest.NewClient(ingest.Config{
		BaseURL:           cfg.Ingest.BaseURL,
		Timeout:           cfg.Ingest.Timeout,
		RequestsPerSecond: cfg.Ingest.RequestsPerSecond,
		Burst:             cfg.Ingest.Burst,
	})

	eng := engine.New(engineConfig(cfg))

	refresher := refresh.New(refresh.Config{
		Interval:    cfg.Refresh.Interval,
		MaxSchemes:  cfg.Refresh.MaxSchemes,
		Concurrency: cfg.Refresh.Concurrency,
	}, client, repo, eng)

	srv := api.NewServer(eng, api.Config{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
		RatePeriod:  cfg.Server.RatePeriod,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
	sup := suture.New("fundcompass", suture.Spec{
		EventHook: handler.MustHook(),
		Timeout:   cfg.Server.ShutdownTimeout,
	})
	sup.Add(refresher)
	sup.Add(&httpService{
		server: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      srv.Routes(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	err = sup.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("Shutdown complete")
		return nil
	}
	return err
}

// engineConfig maps the file configuration onto the pipeline defaults.
func engineConfig(cfg *config.Config) engine.Config {
	ec := engine.DefaultConfig()
	ec.DefaultTopN = cfg.Engine.DefaultTopN
	ec.MaxTopN = cfg.Engine.MaxTopN
	ec.CacheTTL = cfg.Engine.CacheTTL
	ec.Filter = suitability.Config{MinAUMCr: cfg.Engine.MinAUMCr}
	ec.Selection.Policy = selection.ScarcityPolicy(cfg.Engine.ScarcityPolicy)
	return ec
}

// httpService adapts net/http serving to the supervisor contract.
type httpService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

func (s *httpService) String() string { return "http-server" }

// Serve runs the listener until ctx is canceled, then drains in-flight
// requests within the shutdown timeout.
func (s *httpService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return ctx.Err()
}
