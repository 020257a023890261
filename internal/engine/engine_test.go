// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rsondhi/fundcompass/internal/models"
)

// raw builds an unclassified scheme row.
func raw(code int64, name, house, category string, aumCr, ter, sharpe, cagr3y float64) models.Scheme {
	return models.Scheme{
		SchemeCode:   code,
		SchemeName:   name,
		FundHouse:    house,
		RawCategory:  category,
		Plan:         models.PlanDirect,
		AUMCr:        models.Float64(aumCr),
		EstimatedTER: models.Float64(ter),
		SharpeRatio:  models.Float64(sharpe),
		CAGR3Y:       models.Float64(cagr3y),
	}
}

// testUniverse is a small mixed universe covering all asset classes.
func testUniverse() []models.Scheme {
	return []models.Scheme{
		raw(1, "Alpha Large Cap Fund - Direct Plan", "SBI Mutual Fund", "Equity Scheme - Large Cap Fund", 20000, 0.9, 1.2, 0.18),
		raw(2, "Beta Flexi Cap Fund - Direct Plan", "Axis Mutual Fund", "Equity Scheme - Flexi Cap Fund", 8000, 1.1, 0.9, 0.15),
		raw(3, "Gamma Small Cap Fund - Direct Plan", "Quant Mutual Fund", "Equity Scheme - Small Cap Fund", 4000, 1.8, 1.5, 0.28),
		raw(4, "Delta Liquid Fund - Direct Plan", "HDFC Mutual Fund", "Debt Scheme - Liquid Fund", 45000, 0.2, 2.0, 0.06),
		raw(5, "Epsilon Overnight Fund - Direct Plan", "ICICI Prudential Mutual Fund", "Debt Scheme - Overnight Fund", 15000, 0.15, 1.8, 0.05),
		raw(6, "Zeta Corporate Bond Fund - Direct Plan", "Kotak Mahindra Mutual Fund", "Debt Scheme - Corporate Bond Fund", 9000, 0.4, 1.5, 0.07),
		raw(7, "Eta Balanced Advantage Fund - Direct Plan", "HDFC Mutual Fund", "Hybrid Scheme - Balanced Advantage", 30000, 1.0, 1.0, 0.12),
		raw(8, "Theta Arbitrage Fund - Direct Plan", "Kotak Mahindra Mutual Fund", "Hybrid Scheme - Arbitrage Fund", 12000, 0.6, 1.2, 0.06),
	}
}

func newLoadedEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := New(cfg)
	if err := e.LoadSchemes(testUniverse()); err != nil {
		t.Fatalf("LoadSchemes() = %v", err)
	}
	return e
}

func moderateProfile() models.InvestorProfile {
	return models.InvestorProfile{
		Age:           35,
		IncomeBracket: models.Income10To25L,
		MonthlySIP:    10000,
		RiskTolerance: models.RiskModerate,
		Horizon:       models.Horizon5To10Yr,
		Experience:    models.ExperienceIntermediate,
		Goals:         []models.Goal{models.GoalWealthCreation},
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	e := newLoadedEngine(t, DefaultConfig())

	result, err := e.Recommend(context.Background(), moderateProfile(), Options{TopN: 5})
	if err != nil {
		t.Fatalf("Recommend() = %v", err)
	}
	if result.Status != models.StatusOK {
		t.Fatalf("status = %s, reason %q; want ok", result.Status, result.Reason)
	}
	if len(result.Recommendations) != 5 {
		t.Fatalf("got %d recommendations, want 5", len(result.Recommendations))
	}
	if err := result.Allocation.Validate(); err != nil {
		t.Errorf("allocation invalid: %v", err)
	}
	for i, r := range result.Recommendations {
		if r.Rank != i+1 {
			t.Errorf("rank[%d] = %d", i, r.Rank)
		}
		if !r.AssetClass.Valid() {
			t.Errorf("recommendation %d not classified: %s", r.SchemeCode, r.AssetClass)
		}
	}
}

func TestRecommendDeterministic(t *testing.T) {
	// Two engines, no shared state; identical snapshot and profile must
	// produce identical ordered results.
	a := newLoadedEngine(t, DefaultConfig())
	b := newLoadedEngine(t, DefaultConfig())

	ra, err := a.Recommend(context.Background(), moderateProfile(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	rb, err := b.Recommend(context.Background(), moderateProfile(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(ra.Recommendations) != len(rb.Recommendations) {
		t.Fatalf("sizes differ: %d vs %d", len(ra.Recommendations), len(rb.Recommendations))
	}
	for i := range ra.Recommendations {
		x, y := ra.Recommendations[i], rb.Recommendations[i]
		if x.SchemeCode != y.SchemeCode || x.ZScore != y.ZScore {
			t.Errorf("position %d: scheme %d (%v) vs scheme %d (%v)", i, x.SchemeCode, x.ZScore, y.SchemeCode, y.ZScore)
		}
	}
}

func TestRecommendValidatesProfile(t *testing.T) {
	e := newLoadedEngine(t, DefaultConfig())
	p := moderateProfile()
	p.Age = 12

	_, err := e.Recommend(context.Background(), p, Options{})
	var domainErr *models.InputDomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("err = %v, want *InputDomainError", err)
	}
	if domainErr.Field != "age" {
		t.Errorf("field = %q, want age", domainErr.Field)
	}
}

func TestRecommendValidatesOptions(t *testing.T) {
	e := newLoadedEngine(t, DefaultConfig())

	var domainErr *models.InputDomainError
	if _, err := e.Recommend(context.Background(), moderateProfile(), Options{TopN: -1}); !errors.As(err, &domainErr) {
		t.Errorf("TopN=-1: err = %v, want *InputDomainError", err)
	}
	if _, err := e.Recommend(context.Background(), moderateProfile(), Options{TopN: 999}); !errors.As(err, &domainErr) {
		t.Errorf("TopN=999: err = %v, want *InputDomainError", err)
	}
	if _, err := e.Recommend(context.Background(), moderateProfile(), Options{MinAUMCr: -5}); !errors.As(err, &domainErr) {
		t.Errorf("MinAUMCr=-5: err = %v, want *InputDomainError", err)
	}
}

func TestRecommendWithoutSnapshot(t *testing.T) {
	e := New(DefaultConfig())
	_, err := e.Recommend(context.Background(), moderateProfile(), Options{})
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestNoEligibleSchemesIsNormalResult(t *testing.T) {
	e := newLoadedEngine(t, DefaultConfig())
	p := moderateProfile()
	p.Horizon = models.HorizonEmergency

	// Raise the floor above every liquid fund to empty the universe.
	result, err := e.Recommend(context.Background(), p, Options{MinAUMCr: 100000})
	if err != nil {
		t.Fatalf("Recommend() = %v, want normal empty result", err)
	}
	if result.Status != models.StatusNoEligibleSchemes {
		t.Fatalf("status = %s, want no_eligible_schemes", result.Status)
	}
	if result.Reason == "" {
		t.Error("empty result carries no reason")
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("got %d recommendations, want 0", len(result.Recommendations))
	}
}

func TestBeginnerNeverGetsHighRiskEquity(t *testing.T) {
	e := newLoadedEngine(t, DefaultConfig())
	p := moderateProfile()
	p.Experience = models.ExperienceBeginner
	p.RiskTolerance = models.RiskVeryHigh
	p.Horizon = models.Horizon10YrPlus

	result, err := e.Recommend(context.Background(), p, Options{TopN: 8})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range result.Recommendations {
		if r.AssetClass == models.AssetEquity && r.RiskGrade >= 5 {
			t.Errorf("beginner recommended high-risk equity scheme %d", r.SchemeCode)
		}
	}
}

func TestShortHorizonBeginnerOverLiquidUniverse(t *testing.T) {
	e := New(DefaultConfig())
	universe := []models.Scheme{
		raw(11, "P1 Liquid Fund", "HDFC Mutual Fund", "Debt Scheme - Liquid Fund", 500, 0.2, 1.5, 0.06),
		raw(12, "P2 Liquid Fund", "SBI Mutual Fund", "Debt Scheme - Liquid Fund", 900, 0.25, 1.2, 0.055),
		raw(13, "P3 Overnight Fund", "Axis Mutual Fund", "Debt Scheme - Overnight Fund", 150, 0.15, 1.0, 0.05),
	}
	if err := e.LoadSchemes(universe); err != nil {
		t.Fatal(err)
	}

	p := moderateProfile()
	p.Horizon = models.Horizon1To3Yr
	p.Experience = models.ExperienceBeginner

	result, err := e.Recommend(context.Background(), p, Options{TopN: 5})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusOK || len(result.Recommendations) == 0 {
		t.Fatalf("status = %s with %d recommendations, want non-empty ok", result.Status, len(result.Recommendations))
	}
	for _, r := range result.Recommendations {
		if r.AssetClass != models.AssetDebt {
			t.Errorf("scheme %d class = %s, want Debt only", r.SchemeCode, r.AssetClass)
		}
	}
}

func TestResponseCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Minute
	e := newLoadedEngine(t, cfg)

	first, err := e.Recommend(context.Background(), moderateProfile(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Recommend(context.Background(), moderateProfile(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical request did not hit the cache")
	}

	// A swap must invalidate every cached result.
	snap, err := NewSnapshot(testUniverse(), e.classifier)
	if err != nil {
		t.Fatal(err)
	}
	e.Swap(snap)
	third, err := e.Recommend(context.Background(), moderateProfile(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if third == second {
		t.Error("cache survived a snapshot swap")
	}
}

func TestLoadSchemesRejectsIncompleteTable(t *testing.T) {
	e := New(DefaultConfig())
	bad := testUniverse()
	bad[2].SchemeName = ""
	bad[4].SchemeCode = 0

	err := e.LoadSchemes(bad)
	var incomplete *models.DataIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want *DataIncompleteError", err)
	}
	if len(incomplete.Missing) != 2 {
		t.Errorf("missing columns = %v, want scheme_code and scheme_name", incomplete.Missing)
	}
	if e.Snapshot() != nil {
		t.Error("incomplete table was swapped in")
	}
}

func TestClassifyAndRank(t *testing.T) {
	e := New(DefaultConfig())
	annotated := e.ClassifyAndRank(testUniverse())
	if len(annotated) != len(testUniverse()) {
		t.Fatalf("annotated %d schemes, want %d", len(annotated), len(testUniverse()))
	}
	for _, rs := range annotated {
		if !rs.AssetClass.Valid() {
			t.Errorf("scheme %d unclassified", rs.SchemeCode)
		}
		if rs.CohortRank < 1 {
			t.Errorf("scheme %d cohort rank = %d", rs.SchemeCode, rs.CohortRank)
		}
	}
}

func TestStats(t *testing.T) {
	e := newLoadedEngine(t, DefaultConfig())
	if _, err := e.Recommend(context.Background(), moderateProfile(), Options{}); err != nil {
		t.Fatal(err)
	}

	st := e.Stats()
	if st.SnapshotSchemes != len(testUniverse()) {
		t.Errorf("SnapshotSchemes = %d, want %d", st.SnapshotSchemes, len(testUniverse()))
	}
	if st.CachedResults != 1 {
		t.Errorf("CachedResults = %d, want 1", st.CachedResults)
	}
	if st.ClassCounts[models.AssetEquity] != 3 || st.ClassCounts[models.AssetDebt] != 3 || st.ClassCounts[models.AssetHybrid] != 2 {
		t.Errorf("ClassCounts = %v", st.ClassCounts)
	}
}
