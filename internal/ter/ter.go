// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package ter estimates a scheme's total expense ratio.
//
// Published TERs are not available from the NAV provider, so the estimate
// works from three observable signals: the category (passive and
// short-debt products are structurally cheaper), the plan (direct plans
// drop the distributor commission) and the AUM (large funds amortize fixed
// cost). The result is a screening heuristic, not a statement of the
// actual charged ratio.
package ter

import (
	"math"
	"strings"

	"github.com/rsondhi/fundcompass/internal/models"
)

// Estimate bounds in percent.
const (
	MinTER = 0.05
	MaxTER = 2.25
)

// baseRule maps category keywords to the regular-plan benchmark TER.
// Evaluated in order, first match wins.
type baseRule struct {
	keywords []string
	base     float64
}

// Ordered category benchmarks. The default (no match) is active
// equity/hybrid at 2.10.
var baseRules = []baseRule{
	{[]string{"etf", "exchange traded"}, 0.10},
	{[]string{"index"}, 0.80},
	{[]string{"liquid", "overnight"}, 0.25},
	{[]string{"ultra short", "low duration", "money market"}, 0.80},
	{[]string{"debt", "bond", "gilt"}, 1.20},
	{[]string{"arbitrage"}, 1.00},
	{[]string{"fof", "fund of fund"}, 0.50},
}

const defaultBase = 2.10

// Estimate computes the estimated TER in percent for one scheme. aumCr
// may be nil when AUM is unknown; the scale adjustment is then skipped.
func Estimate(schemeName, rawCategory string, plan models.PlanType, aumCr *float64) float64 {
	category := strings.ToLower(rawCategory)

	base := defaultBase
	for _, rule := range baseRules {
		if containsAny(category, rule.keywords) {
			base = rule.base
			break
		}
	}

	if plan == models.PlanDirect || strings.Contains(strings.ToLower(schemeName), "direct") {
		base -= directDiscount(base)
	}

	if aumCr != nil {
		base += aumAdjustment(*aumCr)
	}

	base = math.Max(MinTER, math.Min(MaxTER, base))
	return math.Round(base*100) / 100
}

// EstimateScheme fills s.EstimatedTER from the scheme's own fields.
func EstimateScheme(s models.Scheme) *float64 {
	return models.Float64(Estimate(s.SchemeName, s.RawCategory, s.Plan, s.AUMCr))
}

// directDiscount is tiered on the regular-plan benchmark: the commission
// share shrinks with the base cost.
func directDiscount(base float64) float64 {
	switch {
	case base > 1.80:
		return 1.10 // active equity, ~2.10 -> ~1.00
	case base >= 1.00:
		return 0.60 // long debt, ~1.20 -> ~0.60
	case base >= 0.50:
		return 0.40 // short debt and index, ~0.80 -> ~0.40
	default:
		return 0.05 // liquid and ETF
	}
}

// aumAdjustment models economies of scale. Tiny funds carry a premium.
func aumAdjustment(aumCr float64) float64 {
	switch {
	case aumCr > 50000:
		return -0.30
	case aumCr > 20000:
		return -0.20
	case aumCr > 5000:
		return -0.10
	case aumCr > 0 && aumCr < 50:
		return 0.10
	}
	return 0
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
