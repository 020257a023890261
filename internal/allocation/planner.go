// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package allocation computes the target asset-class weights for a profile.
//
// The planner is a total, deterministic function of the profile alone. It
// never consults the scheme universe and has no failure modes: every valid
// profile maps to weights in [0,1] summing to 1 within tolerance.
package allocation

import (
	"math"

	"github.com/rsondhi/fundcompass/internal/models"
)

// Config holds the allocation constants. Injected immutable; multiple
// configurations may coexist.
type Config struct {
	// EquityBase is subtracted by age and divided by 100 to get the raw
	// equity fraction. The classic rule of thumb uses 110.
	EquityBase float64

	// RiskMultipliers scale the raw equity fraction per risk tolerance.
	RiskMultipliers map[models.RiskTolerance]float64

	// DebtShare is the fraction of the non-equity residual allocated to
	// pure Debt, keyed by risk tolerance. The remainder goes to Hybrid.
	// More conservative profiles take more pure Debt.
	DebtShare map[models.RiskTolerance]float64
}

// DefaultConfig returns the production allocation constants.
func DefaultConfig() Config {
	return Config{
		EquityBase: 110,
		RiskMultipliers: map[models.RiskTolerance]float64{
			models.RiskLow:      0.55,
			models.RiskModerate: 0.85,
			models.RiskHigh:     1.00,
			models.RiskVeryHigh: 1.10,
		},
		DebtShare: map[models.RiskTolerance]float64{
			models.RiskLow:      0.80,
			models.RiskModerate: 0.65,
			models.RiskHigh:     0.50,
			models.RiskVeryHigh: 0.40,
		},
	}
}

// Planner computes AllocationTargets.
type Planner struct {
	cfg Config
}

// New creates a Planner from cfg. Zero-valued fields fall back to defaults.
func New(cfg Config) *Planner {
	def := DefaultConfig()
	if cfg.EquityBase <= 0 {
		cfg.EquityBase = def.EquityBase
	}
	if cfg.RiskMultipliers == nil {
		cfg.RiskMultipliers = def.RiskMultipliers
	}
	if cfg.DebtShare == nil {
		cfg.DebtShare = def.DebtShare
	}
	return &Planner{cfg: cfg}
}

// Plan maps the profile to its target weights.
//
// Equity weight is clamp01((base - age)/100) scaled by the risk multiplier
// and saturating at 1. Emergency and 1-3yr horizons hard-override equity to
// zero regardless of age and risk. The residual splits between Debt and
// Hybrid by the risk-keyed share, except Emergency which is pure Debt.
func (p *Planner) Plan(profile models.InvestorProfile) models.AllocationTarget {
	equity := clamp01((p.cfg.EquityBase-float64(profile.Age))/100) * p.cfg.RiskMultipliers[profile.RiskTolerance]
	equity = clamp01(equity)

	if profile.Horizon.ShortTerm() {
		equity = 0
	}

	residual := 1 - equity
	var debt, hybrid float64
	if profile.Horizon == models.HorizonEmergency {
		debt, hybrid = residual, 0
	} else {
		share := p.cfg.DebtShare[profile.RiskTolerance]
		debt = residual * share
		hybrid = residual * (1 - share)
	}

	target := models.AllocationTarget{
		models.AssetEquity: clamp01(equity),
		models.AssetDebt:   clamp01(debt),
		models.AssetHybrid: clamp01(hybrid),
	}
	renormalize(target)
	return target
}

// renormalize rescales weights so they sum to exactly 1. The sum is always
// positive here since the weights are built from a unit budget.
func renormalize(t models.AllocationTarget) {
	sum := t.Sum()
	if sum <= 0 {
		t[models.AssetDebt] = 1
		return
	}
	if math.Abs(sum-1) <= models.AllocationWeightTolerance {
		return
	}
	for class, w := range t {
		t[class] = w / sum
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
