// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package classify assigns an asset class and risk grade to every scheme
// from its free-text name and category.
//
// Classification is a pure function of (scheme_name, raw_category):
// case-insensitive substring search over an ordered dispatch table,
// first-match-wins. Debt keywords are checked before Hybrid and Equity so
// that fixed-income index products ("... PSU Bond SDL Index Fund") never
// match the "index" token into Equity. Unmatched text falls to Other;
// classification never fails.
package classify

import (
	"strings"

	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/models"
)

// Rule maps a keyword group to an asset class. Rules are evaluated in
// declared order and the first keyword hit wins.
type Rule struct {
	Class    models.AssetClass
	Keywords []string
}

// GradeRule refines the risk grade within one asset class from a
// sub-category keyword hit. Evaluated in declared order, first match wins;
// when nothing matches the class default grade applies.
type GradeRule struct {
	Class    models.AssetClass
	Keywords []string
	Grade    int
}

// Config is the immutable keyword and grading configuration of a
// Classifier. Multiple configurations may coexist; the zero value is not
// usable, start from DefaultConfig.
type Config struct {
	// Rules is the ordered asset-class dispatch table.
	Rules []Rule

	// GradeRules refine the grade inside a matched class.
	GradeRules []GradeRule

	// DefaultGrades is the per-class grade when no GradeRule matches.
	DefaultGrades map[models.AssetClass]int

	// TopAMCs lists fund houses that earn the reputation flag. Matching
	// is a case-insensitive substring test against the fund house name.
	TopAMCs []string
}

// DefaultConfig returns the production keyword tables.
//
// Debt must stay first: its keyword list deliberately overlaps Equity's
// ("bond index", "sdl" funds carry the "index" token) and the override
// order is what keeps debt index products out of Equity.
func DefaultConfig() Config {
	return Config{
		Rules: []Rule{
			{Class: models.AssetDebt, Keywords: []string{
				"liquid", "overnight", "corporate bond", "ultra short",
				"gilt", "bond index", "sdl", "target maturity",
				"money market", "floater", "credit risk", "banking",
				"psu bond", "low duration", "dynamic bond",
			}},
			{Class: models.AssetHybrid, Keywords: []string{
				"balanced", "hybrid", "asset allocation", "multi-asset",
				"multi asset", "arbitrage", "equity savings",
			}},
			{Class: models.AssetEquity, Keywords: []string{
				"equity", "large cap", "mid cap", "small cap", "flexi cap",
				"multi cap", "elss", "tax saver", "index", "focused",
				"value fund", "contra", "sectoral", "thematic",
			}},
		},
		GradeRules: []GradeRule{
			{Class: models.AssetDebt, Keywords: []string{"liquid", "overnight"}, Grade: 1},
			{Class: models.AssetDebt, Keywords: []string{"ultra short", "low duration", "money market", "floater"}, Grade: 2},
			{Class: models.AssetDebt, Keywords: []string{"credit risk"}, Grade: 3},
			{Class: models.AssetHybrid, Keywords: []string{"arbitrage", "equity savings"}, Grade: 2},
			{Class: models.AssetEquity, Keywords: []string{"small cap", "sectoral", "thematic"}, Grade: 5},
			{Class: models.AssetEquity, Keywords: []string{"mid cap"}, Grade: 4},
			{Class: models.AssetEquity, Keywords: []string{"index", "large cap"}, Grade: 3},
		},
		DefaultGrades: map[models.AssetClass]int{
			models.AssetEquity: 4,
			models.AssetDebt:   2,
			models.AssetHybrid: 3,
			models.AssetOther:  3,
		},
		TopAMCs: []string{
			"SBI", "ICICI Prudential", "HDFC", "Nippon India",
			"Kotak Mahindra", "Aditya Birla Sun Life", "UTI", "Axis",
			"Mirae Asset", "DSP",
		},
	}
}

// Classifier applies an immutable Config to schemes.
type Classifier struct {
	cfg     Config
	topAMCs []string // lowercased for matching
}

// New creates a Classifier from cfg. The config is copied shallowly and
// must not be mutated afterwards.
func New(cfg Config) *Classifier {
	top := make([]string, len(cfg.TopAMCs))
	for i, amc := range cfg.TopAMCs {
		top[i] = strings.ToLower(amc)
	}
	return &Classifier{cfg: cfg, topAMCs: top}
}

// Classify maps free text to (asset_class, risk_grade). Total and
// idempotent: identical inputs always produce identical outputs and
// unseen text falls to Other.
func (c *Classifier) Classify(schemeName, rawCategory string) (models.AssetClass, int) {
	text := strings.ToLower(schemeName + " " + rawCategory)

	class := models.AssetOther
	for _, rule := range c.cfg.Rules {
		if containsAny(text, rule.Keywords) {
			class = rule.Class
			break
		}
	}

	grade := c.cfg.DefaultGrades[class]
	for _, gr := range c.cfg.GradeRules {
		if gr.Class != class {
			continue
		}
		if containsAny(text, gr.Keywords) {
			grade = gr.Grade
			break
		}
	}
	if grade < models.RiskGradeMin {
		grade = models.RiskGradeMin
	}
	if grade > models.RiskGradeMax {
		grade = models.RiskGradeMax
	}
	return class, grade
}

// TopAMC reports whether the fund house is on the configured reputation
// list. Matching is a case-insensitive substring test so that
// "SBI Mutual Fund" matches the "SBI" entry.
func (c *Classifier) TopAMC(fundHouse string) bool {
	fh := strings.ToLower(fundHouse)
	for _, amc := range c.topAMCs {
		if strings.Contains(fh, amc) {
			return true
		}
	}
	return false
}

// Apply returns a copy of s with the derived fields populated.
func (c *Classifier) Apply(s models.Scheme) models.Scheme {
	s.AssetClass, s.RiskGrade = c.Classify(s.SchemeName, s.RawCategory)
	s.AMCReputation = c.TopAMC(s.FundHouse)
	return s
}

// ClassifyAll classifies every scheme and returns a new slice; the input
// is not modified. Per-class counts are logged at debug level.
func (c *Classifier) ClassifyAll(schemes []models.Scheme) []models.Scheme {
	out := make([]models.Scheme, len(schemes))
	counts := make(map[models.AssetClass]int, len(models.AssetClasses))
	for i, s := range schemes {
		out[i] = c.Apply(s)
		counts[out[i].AssetClass]++
	}

	lg := logging.WithComponent("classify")
	lg.Debug().
		Int("total", len(out)).
		Int("equity", counts[models.AssetEquity]).
		Int("debt", counts[models.AssetDebt]).
		Int("hybrid", counts[models.AssetHybrid]).
		Int("other", counts[models.AssetOther]).
		Msg("Universe classified")
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
