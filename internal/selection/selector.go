// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package selection turns ranked cohorts and an allocation target into the
// final ordered shortlist.
//
// Slots are distributed proportionally to the target weights, every
// weighted class with at least one eligible scheme gets at least one slot,
// and unfilled slots are backfilled from the next-best ranked schemes
// across all eligible classes. Hard suitability rules are never relaxed
// here; scarcity only redistributes slots among already-eligible schemes.
package selection

import (
	"math"
	"sort"

	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/models"
)

// ScarcityPolicy controls what happens when proportional slots cannot be
// filled from their own cohorts.
type ScarcityPolicy string

const (
	// PolicyBackfill fills leftover slots from other eligible cohorts.
	// Default. Never relaxes a suitability rule.
	PolicyBackfill ScarcityPolicy = "backfill"

	// PolicyStrict returns fewer than top_n instead of borrowing slots
	// from other cohorts.
	PolicyStrict ScarcityPolicy = "strict"
)

// Default reason-label thresholds. Approximate anchors, not load-bearing.
const (
	DefaultLargeAUMCr     = 5000
	DefaultLowTERPct      = 0.50
	DefaultStrong3YReturn = 0.15
)

// Config is the immutable selector configuration.
type Config struct {
	// Policy is the scarcity behavior; empty means PolicyBackfill.
	Policy ScarcityPolicy

	// LargeAUMCr is the "Large AUM" label threshold in crore.
	LargeAUMCr float64

	// LowTERPct is the "Low TER" label threshold in percent.
	LowTERPct float64

	// Strong3YReturn is the "Strong 3Y returns" label threshold as a
	// fraction (0.15 = 15% CAGR).
	Strong3YReturn float64
}

// DefaultConfig returns the production selector configuration.
func DefaultConfig() Config {
	return Config{
		Policy:         PolicyBackfill,
		LargeAUMCr:     DefaultLargeAUMCr,
		LowTERPct:      DefaultLowTERPct,
		Strong3YReturn: DefaultStrong3YReturn,
	}
}

// reasonCheck is one independent (condition, label) pair. Checks run in
// declared order and each one contributes its label independently.
type reasonCheck struct {
	label   string
	applies func(models.Scheme) bool
}

// Selector assembles the final shortlist.
type Selector struct {
	cfg     Config
	reasons []reasonCheck
}

// New creates a Selector. Zero-valued thresholds fall back to defaults.
func New(cfg Config) *Selector {
	def := DefaultConfig()
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	if cfg.LargeAUMCr <= 0 {
		cfg.LargeAUMCr = def.LargeAUMCr
	}
	if cfg.LowTERPct <= 0 {
		cfg.LowTERPct = def.LowTERPct
	}
	if cfg.Strong3YReturn <= 0 {
		cfg.Strong3YReturn = def.Strong3YReturn
	}

	s := &Selector{cfg: cfg}
	s.reasons = []reasonCheck{
		{"Top-10 AMC", func(sch models.Scheme) bool { return sch.AMCReputation }},
		{"Direct Plan", func(sch models.Scheme) bool { return sch.Plan == models.PlanDirect }},
		{"Large AUM", func(sch models.Scheme) bool { return sch.AUMCr != nil && *sch.AUMCr >= cfg.LargeAUMCr }},
		{"Low TER", func(sch models.Scheme) bool { return sch.EstimatedTER != nil && *sch.EstimatedTER <= cfg.LowTERPct }},
		{"Strong 3Y returns", func(sch models.Scheme) bool { return sch.CAGR3Y != nil && *sch.CAGR3Y >= cfg.Strong3YReturn }},
	}
	return s
}

// Select builds the ordered shortlist of size <= topN from the ranked
// cohorts and the allocation target. An empty result is a normal value;
// callers attach the explicit status.
func (s *Selector) Select(cohorts map[models.AssetClass][]models.RankedScheme, target models.AllocationTarget, topN int) []models.Recommendation {
	if topN <= 0 {
		return nil
	}

	// Classes by descending weight; ties fall back to the canonical
	// class order for determinism.
	classes := make([]models.AssetClass, 0, len(target))
	for _, class := range classesByWeight(target) {
		if target[class] > 0 && len(cohorts[class]) > 0 {
			classes = append(classes, class)
		}
	}
	slots := s.distributeSlots(classes, cohorts, target, topN)

	picks := make([]models.RankedScheme, 0, topN)
	taken := make(map[int64]bool, topN)
	for _, class := range classes {
		for _, rs := range cohorts[class][:slots[class]] {
			picks = append(picks, rs)
			taken[rs.SchemeCode] = true
		}
	}

	if s.cfg.Policy == PolicyBackfill && len(picks) < topN {
		picks = append(picks, s.backfill(cohorts, taken, topN-len(picks))...)
	}

	recs := make([]models.Recommendation, len(picks))
	for i, rs := range picks {
		recs[i] = models.Recommendation{
			Scheme:  rs.Scheme,
			Rank:    i + 1,
			ZScore:  rs.ZScore,
			Reasons: s.reasonsFor(rs.Scheme),
		}
	}

	lg := logging.WithComponent("selection")
	lg.Debug().
		Int("top_n", topN).
		Int("selected", len(recs)).
		Str("policy", string(s.cfg.Policy)).
		Msg("Shortlist assembled")
	return recs
}

// distributeSlots assigns proportional slot counts per class. Every
// weighted class with an eligible scheme keeps at least one slot; rounding
// overflow is trimmed from the largest allocations first (ties trim the
// lower-weighted class) so the minimum-one guarantee survives. Only when
// topN is smaller than the number of weighted classes do whole classes
// drop, lowest weight first.
func (s *Selector) distributeSlots(classes []models.AssetClass, cohorts map[models.AssetClass][]models.RankedScheme, target models.AllocationTarget, topN int) map[models.AssetClass]int {
	slots := make(map[models.AssetClass]int, len(classes))
	total := 0
	for _, class := range classes {
		n := int(math.Round(target[class] * float64(topN)))
		if n < 1 {
			n = 1
		}
		if limit := len(cohorts[class]); n > limit {
			n = limit
		}
		slots[class] = n
		total += n
	}

	for total > topN {
		victim := -1
		for i, class := range classes {
			if slots[class] > 1 && (victim < 0 || slots[class] >= slots[classes[victim]]) {
				victim = i
			}
		}
		if victim < 0 {
			// All classes are at one slot; drop the lowest-weighted.
			last := classes[len(classes)-1]
			classes = classes[:len(classes)-1]
			total -= slots[last]
			slots[last] = 0
			continue
		}
		slots[classes[victim]]--
		total--
	}
	return slots
}

// backfill returns up to n not-yet-taken schemes from every eligible
// cohort, best-first. Cross-cohort order uses cohort rank rather than raw
// scores, since scores are only comparable within one cohort.
func (s *Selector) backfill(cohorts map[models.AssetClass][]models.RankedScheme, taken map[int64]bool, n int) []models.RankedScheme {
	var pool []models.RankedScheme
	for _, class := range models.AssetClasses {
		for _, rs := range cohorts[class] {
			if !taken[rs.SchemeCode] {
				pool = append(pool, rs)
			}
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].CohortRank != pool[j].CohortRank {
			return pool[i].CohortRank < pool[j].CohortRank
		}
		return pool[i].SchemeCode < pool[j].SchemeCode
	})
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}

// reasonsFor evaluates the ordered label checks.
func (s *Selector) reasonsFor(sch models.Scheme) []string {
	var labels []string
	for _, rc := range s.reasons {
		if rc.applies(sch) {
			labels = append(labels, rc.label)
		}
	}
	return labels
}

// classesByWeight orders the target's classes by descending weight, then
// canonical class order.
func classesByWeight(target models.AllocationTarget) []models.AssetClass {
	classes := make([]models.AssetClass, 0, len(target))
	canonical := make(map[models.AssetClass]int, len(models.AssetClasses))
	for i, class := range models.AssetClasses {
		canonical[class] = i
	}
	for _, class := range models.AssetClasses {
		if _, ok := target[class]; ok {
			classes = append(classes, class)
		}
	}
	sort.SliceStable(classes, func(i, j int) bool {
		if target[classes[i]] != target[classes[j]] {
			return target[classes[i]] > target[classes[j]]
		}
		return canonical[classes[i]] < canonical[classes[j]]
	})
	return classes
}
