// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package rank scores schemes within their asset-class cohort.
//
// Metrics are standardized per cohort, never globally: equity returns are
// structurally higher than debt returns, and one shared scale would starve
// debt of recommendation slots even for conservative profiles. A missing
// metric imputes to the cohort mean (standardized 0) and never excludes
// the scheme; the imputation stays internal to this package.
package rank

import (
	"math"
	"sort"

	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/models"
)

// Weights blend the three standardized pillars into the composite score.
type Weights struct {
	// Performance weighs the standardized Sharpe ratio (fallback 3y CAGR).
	Performance float64

	// Cost weighs the standardized inverse expense ratio.
	Cost float64

	// Trust weighs the standardized log of assets under management.
	Trust float64
}

// DefaultWeights is the production pillar blend.
func DefaultWeights() Weights {
	return Weights{Performance: 0.4, Cost: 0.3, Trust: 0.3}
}

// Config is the immutable ranker configuration.
type Config struct {
	Weights Weights
}

// DefaultConfig returns the production ranker configuration.
func DefaultConfig() Config {
	return Config{Weights: DefaultWeights()}
}

// Ranker computes within-cohort composite scores.
type Ranker struct {
	cfg Config
}

// New creates a Ranker. A zero weight blend falls back to the default.
func New(cfg Config) *Ranker {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	return &Ranker{cfg: cfg}
}

// Cohorts groups the schemes by asset class, scores each cohort and
// returns the cohorts sorted by descending score, ties broken by scheme
// code ascending. CohortRank is 1-based within each cohort.
func (r *Ranker) Cohorts(schemes []models.Scheme) map[models.AssetClass][]models.RankedScheme {
	byClass := make(map[models.AssetClass][]models.Scheme)
	for _, s := range schemes {
		byClass[s.AssetClass] = append(byClass[s.AssetClass], s)
	}

	out := make(map[models.AssetClass][]models.RankedScheme, len(byClass))
	imputed := 0
	for class, cohort := range byClass {
		ranked, missing := r.rankCohort(cohort)
		out[class] = ranked
		imputed += missing
	}

	lg := logging.WithComponent("rank")
	lg.Debug().
		Int("schemes", len(schemes)).
		Int("cohorts", len(out)).
		Int("imputed_metrics", imputed).
		Msg("Cohorts ranked")
	return out
}

// Rank scores all schemes and returns one flat slice in deterministic
// order: asset classes in canonical order, then cohort rank. Exposed for
// profile-independent diagnostics.
func (r *Ranker) Rank(schemes []models.Scheme) []models.RankedScheme {
	cohorts := r.Cohorts(schemes)
	out := make([]models.RankedScheme, 0, len(schemes))
	for _, class := range models.AssetClasses {
		out = append(out, cohorts[class]...)
	}
	return out
}

// rankCohort standardizes the three pillars over one cohort and blends
// them. Returns the sorted cohort and the number of imputed metrics.
func (r *Ranker) rankCohort(cohort []models.Scheme) ([]models.RankedScheme, int) {
	perfPrimary := distribution(cohort, func(s models.Scheme) *float64 { return s.SharpeRatio })
	perfFallback := distribution(cohort, func(s models.Scheme) *float64 { return s.CAGR3Y })
	cost := distribution(cohort, invTER)
	trust := distribution(cohort, logAUM)

	imputed := 0
	ranked := make([]models.RankedScheme, len(cohort))
	for i, s := range cohort {
		p, ok := perfScore(s, perfPrimary, perfFallback)
		if !ok {
			imputed++
		}
		c, ok := cost.z(invTER(s))
		if !ok {
			imputed++
		}
		t, ok := trust.z(logAUM(s))
		if !ok {
			imputed++
		}
		ranked[i] = models.RankedScheme{
			Scheme: s,
			ZScore: r.cfg.Weights.Performance*p + r.cfg.Weights.Cost*c + r.cfg.Weights.Trust*t,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ZScore != ranked[j].ZScore {
			return ranked[i].ZScore > ranked[j].ZScore
		}
		return ranked[i].SchemeCode < ranked[j].SchemeCode
	})
	for i := range ranked {
		ranked[i].CohortRank = i + 1
	}
	return ranked, imputed
}

// perfScore standardizes the performance pillar: Sharpe when present,
// otherwise the scheme falls back to its cohort's 3y-CAGR distribution.
func perfScore(s models.Scheme, primary, fallback dist) (float64, bool) {
	if z, ok := primary.z(s.SharpeRatio); ok {
		return z, true
	}
	return fallback.z(s.CAGR3Y)
}

// invTER maps the expense ratio to a higher-is-better value.
func invTER(s models.Scheme) *float64 {
	if s.EstimatedTER == nil || *s.EstimatedTER <= 0 {
		return nil
	}
	return models.Float64(1 / *s.EstimatedTER)
}

// logAUM compresses the heavy-tailed AUM scale.
func logAUM(s models.Scheme) *float64 {
	if s.AUMCr == nil || *s.AUMCr <= 0 {
		return nil
	}
	return models.Float64(math.Log(*s.AUMCr))
}

// dist is the mean and sample standard deviation of one metric over a
// cohort.
type dist struct {
	mean, std float64
	n         int
}

// distribution computes the metric's cohort distribution, skipping
// schemes where the metric is unknown.
func distribution(cohort []models.Scheme, metric func(models.Scheme) *float64) dist {
	var sum float64
	var n int
	for _, s := range cohort {
		if v := metric(s); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return dist{}
	}
	mean := sum / float64(n)

	var sq float64
	for _, s := range cohort {
		if v := metric(s); v != nil {
			d := *v - mean
			sq += d * d
		}
	}
	std := 0.0
	if n > 1 {
		std = math.Sqrt(sq / float64(n-1))
	}
	return dist{mean: mean, std: std, n: n}
}

// z standardizes v against the distribution. A nil value or a degenerate
// distribution yields the cohort mean (0) and ok=false for the nil case.
func (d dist) z(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if d.n < 2 || d.std == 0 {
		return 0, true
	}
	return (*v - d.mean) / d.std, true
}
