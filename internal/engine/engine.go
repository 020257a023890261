// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package engine orchestrates the recommendation pipeline.
//
// One Engine owns the active scheme snapshot and runs the stages
// CLASSIFY (at snapshot build) then FILTER, ALLOCATE, RANK and SELECT per
// request. Requests are purely functional over the snapshot: no stage
// blocks, suspends or mutates shared state, so cancellation applies only
// at the snapshot-refresh boundary, never inside the pipeline. Callers
// always receive a populated list, an explicit empty result with a reason,
// or a typed error.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rsondhi/fundcompass/internal/allocation"
	"github.com/rsondhi/fundcompass/internal/classify"
	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/metrics"
	"github.com/rsondhi/fundcompass/internal/models"
	"github.com/rsondhi/fundcompass/internal/rank"
	"github.com/rsondhi/fundcompass/internal/selection"
	"github.com/rsondhi/fundcompass/internal/suitability"
)

// ErrNoSnapshot is returned when a request arrives before any scheme
// table has been loaded.
var ErrNoSnapshot = errors.New("no scheme snapshot loaded")

// Default request limits.
const (
	DefaultTopN      = 10
	MaxTopN          = 50
	DefaultCacheTTL  = 5 * time.Minute
	DefaultCacheSize = 1024
)

// Config assembles the pipeline configuration. The zero value uses the
// production defaults of every stage.
type Config struct {
	// DefaultTopN applies when a request does not set Options.TopN.
	DefaultTopN int

	// MaxTopN caps Options.TopN.
	MaxTopN int

	// CacheTTL bounds how long identical-profile results are replayed.
	// Zero disables the response cache.
	CacheTTL time.Duration

	// CacheSize caps the number of cached results.
	CacheSize int

	Classifier classify.Config
	Filter     suitability.Config
	Allocation allocation.Config
	Rank       rank.Config
	Selection  selection.Config
}

// DefaultConfig returns the production engine configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTopN: DefaultTopN,
		MaxTopN:     MaxTopN,
		CacheTTL:    DefaultCacheTTL,
		CacheSize:   DefaultCacheSize,
		Classifier:  classify.DefaultConfig(),
		Filter:      suitability.DefaultConfig(),
		Allocation:  allocation.DefaultConfig(),
		Rank:        rank.DefaultConfig(),
		Selection:   selection.DefaultConfig(),
	}
}

// Options are the per-request knobs of Recommend.
type Options struct {
	// TopN is the requested shortlist size; 0 means the configured
	// default, values above the configured maximum are rejected.
	TopN int

	// MinAUMCr overrides the AUM floor when > 0.
	MinAUMCr float64
}

// Result is the outcome of one recommendation request. An empty shortlist
// with StatusNoEligibleSchemes is a normal outcome, not an error.
type Result struct {
	Status          models.ResultStatus       `json:"status"`
	Reason          string                    `json:"reason,omitempty"`
	Allocation      models.AllocationTarget   `json:"allocation"`
	Recommendations []models.Recommendation   `json:"recommendations"`
	EligibleCounts  map[models.AssetClass]int `json:"eligible_counts"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// Stats describes the engine's operational state for diagnostics.
type Stats struct {
	SnapshotSchemes int                       `json:"snapshot_schemes"`
	SnapshotLoaded  time.Time                 `json:"snapshot_loaded_at"`
	ClassCounts     map[models.AssetClass]int `json:"class_counts"`
	CachedResults   int                       `json:"cached_results"`
}

// Engine runs the recommendation pipeline over an atomically swappable
// scheme snapshot.
type Engine struct {
	cfg        Config
	classifier *classify.Classifier
	filter     *suitability.Filter
	planner    *allocation.Planner
	ranker     *rank.Ranker
	selector   *selection.Selector

	snapshot atomic.Pointer[Snapshot]
	cache    *resultCache
	logger   zerolog.Logger
}

// New creates an Engine from cfg. No snapshot is loaded yet; Recommend
// fails with ErrNoSnapshot until the first Swap.
func New(cfg Config) *Engine {
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = DefaultTopN
	}
	if cfg.MaxTopN <= 0 {
		cfg.MaxTopN = MaxTopN
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	e := &Engine{
		cfg:        cfg,
		classifier: classify.New(cfg.Classifier),
		filter:     suitability.New(cfg.Filter),
		planner:    allocation.New(cfg.Allocation),
		ranker:     rank.New(cfg.Rank),
		selector:   selection.New(cfg.Selection),
		logger:     logging.WithComponent("engine"),
	}
	if cfg.CacheTTL > 0 {
		e.cache = newResultCache(cfg.CacheTTL, cfg.CacheSize)
	}
	return e
}

// LoadSchemes builds a snapshot from raw rows and swaps it in.
func (e *Engine) LoadSchemes(raw []models.Scheme) error {
	snap, err := NewSnapshot(raw, e.classifier)
	if err != nil {
		return fmt.Errorf("building snapshot: %w", err)
	}
	e.Swap(snap)
	return nil
}

// Swap atomically publishes a new snapshot. In-flight requests keep the
// snapshot they started with; the response cache is cleared so no stale
// result outlives its table.
func (e *Engine) Swap(snap *Snapshot) {
	e.snapshot.Store(snap)
	if e.cache != nil {
		e.cache.clear()
	}
	metrics.SnapshotSchemes.Set(float64(snap.Len()))
	metrics.SnapshotTimestamp.Set(float64(snap.LoadedAt().Unix()))
	e.logger.Info().
		Int("schemes", snap.Len()).
		Time("loaded_at", snap.LoadedAt()).
		Msg("Snapshot swapped")
}

// Snapshot returns the active snapshot, or nil before the first Swap.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Recommend runs FILTER, ALLOCATE, RANK and SELECT for one profile.
//
// Typed failures: *models.InputDomainError for out-of-domain profile or
// option values, ErrNoSnapshot before the first load. A filtered-to-empty
// universe is returned as a normal Result with StatusNoEligibleSchemes.
func (e *Engine) Recommend(ctx context.Context, profile models.InvestorProfile, opts Options) (*Result, error) {
	start := time.Now()

	if err := profile.Validate(); err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	topN, err := e.resolveTopN(opts.TopN)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if opts.MinAUMCr < 0 {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, &models.InputDomainError{Field: "min_aum_cr", Value: opts.MinAUMCr, Reason: "must be >= 0"}
	}

	snap := e.Snapshot()
	if snap == nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return nil, ErrNoSnapshot
	}

	key := cacheKey(profile, topN, opts.MinAUMCr)
	if e.cache != nil {
		if cached, ok := e.cache.get(key); ok {
			metrics.CacheHits.Inc()
			return cached, nil
		}
		metrics.CacheMisses.Inc()
	}

	result := e.run(ctx, snap, profile, topN, opts.MinAUMCr)

	if e.cache != nil {
		e.cache.put(key, result)
	}
	metrics.RecommendationsTotal.WithLabelValues(string(result.Status)).Inc()
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())

	logging.Ctx(ctx).Info().
		Str("status", string(result.Status)).
		Int("recommendations", len(result.Recommendations)).
		Int("top_n", topN).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendation request served")
	return result, nil
}

// run executes the stage sequence. Purely functional over the snapshot.
func (e *Engine) run(ctx context.Context, snap *Snapshot, profile models.InvestorProfile, topN int, minAUMCr float64) *Result {
	filterStart := time.Now()
	outcome := e.filter.Apply(snap.Schemes(), profile, minAUMCr)
	metrics.StageDuration.WithLabelValues("filter").Observe(time.Since(filterStart).Seconds())

	allocStart := time.Now()
	target := e.planner.Plan(profile)
	metrics.StageDuration.WithLabelValues("allocate").Observe(time.Since(allocStart).Seconds())

	result := &Result{
		Allocation:     target,
		EligibleCounts: outcome.ClassCounts,
		GeneratedAt:    time.Now().UTC(),
	}

	if len(outcome.Eligible) == 0 {
		result.Status = models.StatusNoEligibleSchemes
		result.Reason = noEligibleReason(snap.Len(), outcome.Removed)
		result.Recommendations = []models.Recommendation{}
		logging.Ctx(ctx).Info().
			Int("universe", snap.Len()).
			Msg("No eligible schemes for profile")
		return result
	}

	rankStart := time.Now()
	cohorts := e.ranker.Cohorts(outcome.Eligible)
	metrics.StageDuration.WithLabelValues("rank").Observe(time.Since(rankStart).Seconds())

	selectStart := time.Now()
	result.Recommendations = e.selector.Select(cohorts, target, topN)
	metrics.StageDuration.WithLabelValues("select").Observe(time.Since(selectStart).Seconds())

	if len(result.Recommendations) == 0 {
		// Eligible schemes existed but every weighted cohort was empty
		// and the policy forbids backfill.
		result.Status = models.StatusNoEligibleSchemes
		result.Reason = "no eligible schemes in any allocated asset class"
		return result
	}
	result.Status = models.StatusOK
	return result
}

// ClassifyAndRank annotates an arbitrary scheme table with asset class,
// risk grade and within-cohort scores. Diagnostics surface, independent of
// any profile and of the active snapshot.
func (e *Engine) ClassifyAndRank(schemes []models.Scheme) []models.RankedScheme {
	return e.ranker.Rank(e.classifier.ClassifyAll(schemes))
}

// Stats reports the engine's operational state.
func (e *Engine) Stats() Stats {
	st := Stats{ClassCounts: map[models.AssetClass]int{}}
	if snap := e.Snapshot(); snap != nil {
		st.SnapshotSchemes = snap.Len()
		st.SnapshotLoaded = snap.LoadedAt()
		st.ClassCounts = snap.ClassCounts()
	}
	if e.cache != nil {
		st.CachedResults = e.cache.len()
	}
	return st
}

func (e *Engine) resolveTopN(topN int) (int, error) {
	switch {
	case topN == 0:
		return e.cfg.DefaultTopN, nil
	case topN < 0:
		return 0, &models.InputDomainError{Field: "top_n", Value: topN, Reason: "must be > 0"}
	case topN > e.cfg.MaxTopN:
		return 0, &models.InputDomainError{Field: "top_n", Value: topN, Reason: fmt.Sprintf("must be <= %d", e.cfg.MaxTopN)}
	}
	return topN, nil
}

// noEligibleReason summarizes which rules emptied the universe, in a
// stable order.
func noEligibleReason(universe int, removed map[string]int) string {
	parts := make([]string, 0, len(removed))
	for _, name := range []string{"aum_floor", "horizon", "experience", "min_ticket"} {
		if n := removed[name]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s removed %d", name, n))
		}
	}
	if len(parts) == 0 {
		return "scheme universe is empty"
	}
	return fmt.Sprintf("all %d schemes are unsuitable (%s)", universe, strings.Join(parts, ", "))
}

// cacheKey builds a deterministic key over everything that affects the
// result besides the snapshot (Swap clears the cache).
func cacheKey(p models.InvestorProfile, topN int, minAUMCr float64) string {
	goals := make([]string, len(p.Goals))
	for i, g := range p.Goals {
		goals[i] = string(g)
	}
	return fmt.Sprintf("%d|%d|%.2f|%d|%d|%d|%s|%d|%.2f",
		p.Age, p.IncomeBracket, p.MonthlySIP, p.RiskTolerance, p.Horizon,
		p.Experience, strings.Join(goals, ","), topN, minAUMCr)
}
