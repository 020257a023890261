// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package refresh keeps the scheme snapshot current.
//
// The service runs under a suture supervisor: it warm-starts the engine
// from the store, then periodically re-ingests the universe, upserts the
// merged rows and swaps a complete new snapshot into the engine. A failed
// cycle leaves the previous snapshot untouched; cancellation applies here,
// at the refresh boundary, never inside the recommendation pipeline.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rsondhi/fundcompass/internal/ingest"
	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/metrics"
	"github.com/rsondhi/fundcompass/internal/models"
)

// Fetcher is the upstream provider surface the service needs.
type Fetcher interface {
	SchemeList(ctx context.Context) ([]ingest.SchemeRef, error)
	SchemeHistory(ctx context.Context, schemeCode int64) (*ingest.SchemeHistory, error)
}

// Repository is the persistence surface the service needs.
type Repository interface {
	UpsertSchemes(ctx context.Context, schemes []models.Scheme) error
	LoadSchemes(ctx context.Context) ([]models.Scheme, error)
}

// Loader receives the refreshed table, typically the engine.
type Loader interface {
	LoadSchemes(raw []models.Scheme) error
}

// Config holds the refresh schedule.
type Config struct {
	// Interval between refresh cycles. Default 24h.
	Interval time.Duration

	// MaxSchemes caps how many schemes one cycle fetches, keeping load
	// on the free provider bounded. 0 means no cap.
	MaxSchemes int

	// Concurrency is the number of fetch workers. Default 4.
	Concurrency int
}

// DefaultConfig returns the production refresh configuration.
func DefaultConfig() Config {
	return Config{
		Interval:    24 * time.Hour,
		MaxSchemes:  0,
		Concurrency: 4,
	}
}

// Service implements suture.Service.
type Service struct {
	cfg     Config
	fetcher Fetcher
	repo    Repository
	loader  Loader
	logger  zerolog.Logger
}

// New creates a refresh Service.
func New(cfg Config, fetcher Fetcher, repo Repository, loader Loader) *Service {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		repo:    repo,
		loader:  loader,
		logger:  logging.WithComponent("refresh"),
	}
}

// String names the service in supervisor logs.
func (s *Service) String() string {
	return "scheme-refresh"
}

// Serve warm-starts the engine from the store, then refreshes on the
// configured interval until the supervisor cancels the context.
func (s *Service) Serve(ctx context.Context) error {
	if err := s.warmStart(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Warm start failed, waiting for first refresh")
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.refreshOnce(ctx); err != nil {
				metrics.RefreshTotal.WithLabelValues("error").Inc()
				s.logger.Error().Err(err).Msg("Refresh cycle failed")
				continue
			}
			metrics.RefreshTotal.WithLabelValues("ok").Inc()
		}
	}
}

// warmStart loads whatever the store already holds into the engine so the
// API serves immediately after a restart.
func (s *Service) warmStart(ctx context.Context) error {
	stored, err := s.repo.LoadSchemes(ctx)
	if err != nil {
		return fmt.Errorf("loading stored schemes: %w", err)
	}
	if len(stored) == 0 {
		return fmt.Errorf("store is empty")
	}
	if err := s.loader.LoadSchemes(stored); err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	s.logger.Info().Int("schemes", len(stored)).Msg("Warm start complete")
	return nil
}

// refreshOnce runs one full ingest-merge-swap cycle.
func (s *Service) refreshOnce(ctx context.Context) error {
	start := time.Now()

	refs, err := s.fetcher.SchemeList(ctx)
	if err != nil {
		return fmt.Errorf("listing schemes: %w", err)
	}
	if s.cfg.MaxSchemes > 0 && len(refs) > s.cfg.MaxSchemes {
		refs = refs[:s.cfg.MaxSchemes]
	}

	// AUM has no upstream source here; carry it over from stored rows.
	aumByCode := map[int64]*float64{}
	if stored, err := s.repo.LoadSchemes(ctx); err == nil {
		for _, sch := range stored {
			aumByCode[sch.SchemeCode] = sch.AUMCr
		}
	}

	schemes := s.fetchAll(ctx, refs, aumByCode)
	if len(schemes) == 0 {
		return fmt.Errorf("fetched 0 of %d schemes", len(refs))
	}

	if err := s.repo.UpsertSchemes(ctx, schemes); err != nil {
		return fmt.Errorf("persisting schemes: %w", err)
	}
	stored, err := s.repo.LoadSchemes(ctx)
	if err != nil {
		return fmt.Errorf("reloading schemes: %w", err)
	}
	if err := s.loader.LoadSchemes(stored); err != nil {
		return fmt.Errorf("swapping snapshot: %w", err)
	}

	s.logger.Info().
		Int("fetched", len(schemes)).
		Int("snapshot", len(stored)).
		Dur("elapsed", time.Since(start)).
		Msg("Refresh cycle complete")
	return nil
}

// fetchAll pulls scheme histories with a bounded worker pool. Individual
// failures are logged and skipped; the cycle succeeds with what it got.
func (s *Service) fetchAll(ctx context.Context, refs []ingest.SchemeRef, aumByCode map[int64]*float64) []models.Scheme {
	jobs := make(chan ingest.SchemeRef)
	var mu sync.Mutex
	var schemes []models.Scheme

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				history, err := s.fetcher.SchemeHistory(ctx, ref.SchemeCode)
				if err != nil {
					s.logger.Debug().Err(err).Int64("scheme_code", ref.SchemeCode).Msg("Scheme fetch skipped")
					continue
				}
				sch := ingest.BuildScheme(history, aumByCode[ref.SchemeCode])
				mu.Lock()
				schemes = append(schemes, sch)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- ref:
		}
	}
	close(jobs)
	wg.Wait()
	return schemes
}
