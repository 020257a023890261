// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package models

import "fmt"

// AssetClass is the coarse asset classification of a scheme.
type AssetClass string

const (
	// AssetEquity covers growth-oriented equity schemes.
	AssetEquity AssetClass = "Equity"
	// AssetDebt covers fixed-income schemes, including debt index products.
	AssetDebt AssetClass = "Debt"
	// AssetHybrid covers balanced, arbitrage and multi-asset schemes.
	AssetHybrid AssetClass = "Hybrid"
	// AssetOther is the fallback when no keyword matches.
	AssetOther AssetClass = "Other"
)

// AssetClasses lists all asset classes in stable iteration order.
var AssetClasses = []AssetClass{AssetEquity, AssetDebt, AssetHybrid, AssetOther}

// Valid reports whether the asset class is a known value.
func (a AssetClass) Valid() bool {
	switch a {
	case AssetEquity, AssetDebt, AssetHybrid, AssetOther:
		return true
	}
	return false
}

// PlanType distinguishes direct from distributor-sold plans.
type PlanType string

const (
	// PlanDirect is a direct plan (no distributor commission).
	PlanDirect PlanType = "Direct"
	// PlanRegular is a regular (distributor) plan.
	PlanRegular PlanType = "Regular"
)

// Risk grade bounds. Grades run from 1 (liquid/overnight) to 5
// (small cap / sectoral / thematic).
const (
	RiskGradeMin = 1
	RiskGradeMax = 5
)

// Scheme is one mutual fund scheme row of the snapshot table.
//
// Identity and descriptive text come from the provider; the numeric metrics
// are derived from NAV history and may individually be unknown (nil).
// AssetClass, RiskGrade and AMCReputation are derived at classification time
// and immutable afterwards.
type Scheme struct {
	// SchemeCode is the unique AMFI scheme identifier.
	SchemeCode int64 `json:"scheme_code"`

	// SchemeName is the full scheme name as published.
	SchemeName string `json:"scheme_name"`

	// FundHouse is the asset management company name.
	FundHouse string `json:"fund_house"`

	// RawCategory is the provider's free-text category string.
	RawCategory string `json:"raw_category"`

	// Plan is Direct or Regular, derived from the scheme name.
	Plan PlanType `json:"plan"`

	// NAV is the latest net asset value.
	NAV *float64 `json:"nav,omitempty"`

	// AUMCr is assets under management in crore.
	AUMCr *float64 `json:"aum_cr,omitempty"`

	// EstimatedTER is the estimated total expense ratio in percent.
	EstimatedTER *float64 `json:"estimated_ter,omitempty"`

	// CAGR1Y is the absolute 1-year return (fraction, not percent).
	CAGR1Y *float64 `json:"cagr_1y,omitempty"`

	// CAGR3Y is the 3-year compound annual growth rate.
	CAGR3Y *float64 `json:"cagr_3y,omitempty"`

	// CAGR5Y is the 5-year compound annual growth rate.
	CAGR5Y *float64 `json:"cagr_5y,omitempty"`

	// Volatility1Y is the annualized 1-year NAV volatility.
	Volatility1Y *float64 `json:"volatility_1y,omitempty"`

	// SharpeRatio is the annualized 1-year Sharpe ratio.
	SharpeRatio *float64 `json:"sharpe_ratio,omitempty"`

	// MinSIP is the minimum monthly subscription amount, when known.
	MinSIP *float64 `json:"min_sip,omitempty"`

	// AssetClass is the derived asset classification.
	AssetClass AssetClass `json:"asset_class"`

	// RiskGrade is the derived risk grade (1..5).
	RiskGrade int `json:"risk_grade"`

	// AMCReputation is true when the fund house is a top-10 AMC.
	AMCReputation bool `json:"amc_reputation"`
}

// RankedScheme is a scheme annotated with its composite quality score and
// its rank within the asset-class cohort (1 = best, ties broken by
// scheme code ascending).
type RankedScheme struct {
	Scheme

	// ZScore is the composite quality score; higher is better. Scores are
	// only comparable within one asset-class cohort.
	ZScore float64 `json:"z_score"`

	// CohortRank is the 1-based rank within the scheme's cohort.
	CohortRank int `json:"cohort_rank"`
}

// Recommendation is one entry of the final ordered shortlist.
type Recommendation struct {
	Scheme

	// Rank is the 1-based overall position in the shortlist.
	Rank int `json:"rank"`

	// ZScore is the within-cohort composite score of the scheme.
	ZScore float64 `json:"z_score"`

	// Reasons are human-readable labels explaining the selection, in the
	// order the label checks are declared.
	Reasons []string `json:"reasons"`
}

// Float64 returns a pointer to v. Convenience for building optional metrics.
func Float64(v float64) *float64 {
	return &v
}

// String implements fmt.Stringer for log output.
func (s *Scheme) String() string {
	return fmt.Sprintf("%d %q [%s/%d]", s.SchemeCode, s.SchemeName, s.AssetClass, s.RiskGrade)
}
