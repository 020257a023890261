// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package suitability removes schemes that are hard-ineligible for a
// profile.
//
// The filter is an ordered AND of predicates. Each predicate only removes
// schemes (monotone), so the resulting set does not depend on predicate
// order; the order still matters for explainability and is preserved in the
// per-predicate removal log. A zero-scheme outcome is legitimate for
// conservative profiles and is reported, not raised.
package suitability

import (
	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/models"
)

// DefaultMinAUMCr is the default assets-under-management floor in crore.
const DefaultMinAUMCr = 100

// Config is the immutable filter configuration.
type Config struct {
	// MinAUMCr is the AUM floor applied when the request does not
	// override it. Schemes with unknown AUM cannot satisfy the floor.
	MinAUMCr float64
}

// DefaultConfig returns the production filter configuration.
func DefaultConfig() Config {
	return Config{MinAUMCr: DefaultMinAUMCr}
}

// Outcome is the result of one filter pass.
type Outcome struct {
	// Eligible is the surviving subset in input order.
	Eligible []models.Scheme

	// ClassCounts is the per-asset-class eligible count, including
	// zero entries for every known class.
	ClassCounts map[models.AssetClass]int

	// Removed maps predicate name to the number of schemes it removed,
	// attributing each removal to the first failing predicate.
	Removed map[string]int
}

// predicate is one hard eligibility rule. keep returns true when the
// scheme survives the rule.
type predicate struct {
	name string
	keep func(models.Scheme) bool
}

// Filter applies the hard suitability rules.
type Filter struct {
	cfg Config
}

// New creates a Filter. Zero-valued fields of cfg fall back to defaults.
func New(cfg Config) *Filter {
	if cfg.MinAUMCr <= 0 {
		cfg.MinAUMCr = DefaultMinAUMCr
	}
	return &Filter{cfg: cfg}
}

// Apply filters the classified universe for the profile. minAUMCr <= 0
// means "use the configured floor". The input slice is not modified.
func (f *Filter) Apply(schemes []models.Scheme, profile models.InvestorProfile, minAUMCr float64) Outcome {
	if minAUMCr <= 0 {
		minAUMCr = f.cfg.MinAUMCr
	}
	preds := f.predicates(profile, minAUMCr)

	out := Outcome{
		Eligible:    make([]models.Scheme, 0, len(schemes)),
		ClassCounts: make(map[models.AssetClass]int, len(models.AssetClasses)),
		Removed:     make(map[string]int, len(preds)),
	}
	for _, class := range models.AssetClasses {
		out.ClassCounts[class] = 0
	}

	for _, s := range schemes {
		if name, ok := firstFailing(preds, s); !ok {
			out.Removed[name]++
			continue
		}
		out.Eligible = append(out.Eligible, s)
		out.ClassCounts[s.AssetClass]++
	}

	logger := logging.WithComponent("suitability")
	ev := logger.Debug().
		Int("universe", len(schemes)).
		Int("eligible", len(out.Eligible)).
		Float64("min_aum_cr", minAUMCr)
	// Removal counts logged in predicate order for explainability.
	for _, p := range preds {
		ev = ev.Int("removed_"+p.name, out.Removed[p.name])
	}
	ev.Msg("Suitability filter applied")

	return out
}

// predicates builds the ordered rule list for one profile.
func (f *Filter) predicates(profile models.InvestorProfile, minAUMCr float64) []predicate {
	return []predicate{
		{
			name: "aum_floor",
			keep: func(s models.Scheme) bool {
				return s.AUMCr != nil && *s.AUMCr >= minAUMCr
			},
		},
		{
			name: "horizon",
			keep: func(s models.Scheme) bool {
				return horizonEligible(profile.Horizon, s)
			},
		},
		{
			name: "experience",
			keep: func(s models.Scheme) bool {
				if profile.Experience != models.ExperienceBeginner {
					return true
				}
				// Beginners never get small-cap / sectoral / thematic.
				return !highRiskEquity(s)
			},
		},
		{
			name: "min_ticket",
			keep: func(s models.Scheme) bool {
				return s.MinSIP == nil || *s.MinSIP <= profile.MonthlySIP
			},
		},
	}
}

// horizonEligible implements the horizon ladder. Short horizons collapse
// the universe to capital-preserving debt; 3-5yr only trims the riskiest
// equity; long horizons do not exclude anything.
func horizonEligible(h models.Horizon, s models.Scheme) bool {
	switch h {
	case models.HorizonEmergency:
		return s.AssetClass == models.AssetDebt && s.RiskGrade == 1
	case models.Horizon1To3Yr:
		if s.AssetClass == models.AssetDebt && s.RiskGrade <= 2 {
			return true
		}
		// Arbitrage-like hybrids carry debt-like risk.
		return s.AssetClass == models.AssetHybrid && s.RiskGrade <= 2
	case models.Horizon3To5Yr:
		return !highRiskEquity(s)
	default:
		return true
	}
}

// highRiskEquity reports grade-5 equity (small cap, sectoral, thematic).
func highRiskEquity(s models.Scheme) bool {
	return s.AssetClass == models.AssetEquity && s.RiskGrade >= 5
}

// firstFailing returns the name of the first predicate s fails, or ok=true
// when s survives all of them.
func firstFailing(preds []predicate, s models.Scheme) (string, bool) {
	for _, p := range preds {
		if !p.keep(s) {
			return p.name, false
		}
	}
	return "", true
}
