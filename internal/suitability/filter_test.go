// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package suitability

import (
	"testing"

	"github.com/rsondhi/fundcompass/internal/models"
)

func scheme(code int64, class models.AssetClass, grade int, aumCr float64) models.Scheme {
	return models.Scheme{
		SchemeCode: code,
		SchemeName: "test scheme",
		AssetClass: class,
		RiskGrade:  grade,
		AUMCr:      models.Float64(aumCr),
	}
}

func baseProfile() models.InvestorProfile {
	return models.InvestorProfile{
		Age:           35,
		IncomeBracket: models.Income10To25L,
		MonthlySIP:    10000,
		RiskTolerance: models.RiskHigh,
		Horizon:       models.Horizon10YrPlus,
		Experience:    models.ExperienceExpert,
	}
}

func TestAUMFloor(t *testing.T) {
	f := New(DefaultConfig())
	noAUM := models.Scheme{SchemeCode: 3, AssetClass: models.AssetEquity, RiskGrade: 3}
	universe := []models.Scheme{
		scheme(1, models.AssetEquity, 3, 500),
		scheme(2, models.AssetEquity, 3, 50),
		noAUM,
	}

	out := f.Apply(universe, baseProfile(), 0)
	if len(out.Eligible) != 1 || out.Eligible[0].SchemeCode != 1 {
		t.Fatalf("eligible = %v, want only scheme 1", out.Eligible)
	}
	if out.Removed["aum_floor"] != 2 {
		t.Errorf("aum_floor removed = %d, want 2", out.Removed["aum_floor"])
	}
}

func TestAUMFloorOverride(t *testing.T) {
	f := New(DefaultConfig())
	universe := []models.Scheme{
		scheme(1, models.AssetEquity, 3, 500),
		scheme(2, models.AssetEquity, 3, 50),
	}
	out := f.Apply(universe, baseProfile(), 40)
	if len(out.Eligible) != 2 {
		t.Errorf("eligible = %d with floor 40, want 2", len(out.Eligible))
	}
}

func TestHorizonLadder(t *testing.T) {
	f := New(DefaultConfig())
	universe := []models.Scheme{
		scheme(1, models.AssetDebt, 1, 5000),   // liquid
		scheme(2, models.AssetDebt, 2, 5000),   // short duration
		scheme(3, models.AssetHybrid, 2, 5000), // arbitrage-like
		scheme(4, models.AssetHybrid, 3, 5000), // aggressive hybrid
		scheme(5, models.AssetEquity, 3, 5000), // large cap
		scheme(6, models.AssetEquity, 5, 5000), // small cap
	}

	tests := []struct {
		name      string
		horizon   models.Horizon
		wantCodes []int64
	}{
		{"emergency keeps only grade-1 debt", models.HorizonEmergency, []int64{1}},
		{"1-3yr keeps low-risk debt and arbitrage", models.Horizon1To3Yr, []int64{1, 2, 3}},
		{"3-5yr drops only grade-5 equity", models.Horizon3To5Yr, []int64{1, 2, 3, 4, 5}},
		{"5-10yr keeps everything", models.Horizon5To10Yr, []int64{1, 2, 3, 4, 5, 6}},
		{"10+yr keeps everything", models.Horizon10YrPlus, []int64{1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			p.Horizon = tt.horizon
			out := f.Apply(universe, p, 0)
			codes := make([]int64, len(out.Eligible))
			for i, s := range out.Eligible {
				codes[i] = s.SchemeCode
			}
			if len(codes) != len(tt.wantCodes) {
				t.Fatalf("eligible codes = %v, want %v", codes, tt.wantCodes)
			}
			for i := range codes {
				if codes[i] != tt.wantCodes[i] {
					t.Fatalf("eligible codes = %v, want %v", codes, tt.wantCodes)
				}
			}
		})
	}
}

func TestBeginnerExclusion(t *testing.T) {
	f := New(DefaultConfig())
	universe := []models.Scheme{
		scheme(1, models.AssetEquity, 3, 5000),
		scheme(2, models.AssetEquity, 5, 5000), // sectoral / small cap
		scheme(3, models.AssetDebt, 2, 5000),
	}

	p := baseProfile()
	p.Experience = models.ExperienceBeginner
	// Long horizon: only the experience rule should remove scheme 2.
	out := f.Apply(universe, p, 0)
	for _, s := range out.Eligible {
		if s.AssetClass == models.AssetEquity && s.RiskGrade >= 5 {
			t.Errorf("beginner got high-risk equity scheme %d", s.SchemeCode)
		}
	}
	if len(out.Eligible) != 2 {
		t.Errorf("eligible = %d, want 2", len(out.Eligible))
	}
	if out.Removed["experience"] != 1 {
		t.Errorf("experience removed = %d, want 1", out.Removed["experience"])
	}
}

func TestMinTicket(t *testing.T) {
	f := New(DefaultConfig())
	affordable := scheme(1, models.AssetEquity, 3, 5000)
	affordable.MinSIP = models.Float64(500)
	expensive := scheme(2, models.AssetEquity, 3, 5000)
	expensive.MinSIP = models.Float64(25000)
	unknown := scheme(3, models.AssetEquity, 3, 5000)

	p := baseProfile()
	p.MonthlySIP = 1000
	out := f.Apply([]models.Scheme{affordable, expensive, unknown}, p, 0)
	if len(out.Eligible) != 2 {
		t.Fatalf("eligible = %d, want 2 (unknown ticket passes)", len(out.Eligible))
	}
	if out.Removed["min_ticket"] != 1 {
		t.Errorf("min_ticket removed = %d, want 1", out.Removed["min_ticket"])
	}
}

func TestZeroEligibleIsSurfacedNotFatal(t *testing.T) {
	f := New(DefaultConfig())
	universe := []models.Scheme{
		scheme(1, models.AssetEquity, 5, 5000),
	}
	p := baseProfile()
	p.Horizon = models.HorizonEmergency

	out := f.Apply(universe, p, 0)
	if len(out.Eligible) != 0 {
		t.Fatalf("eligible = %d, want 0", len(out.Eligible))
	}
	// All known classes must still be present with zero counts.
	for _, class := range models.AssetClasses {
		if n, ok := out.ClassCounts[class]; !ok || n != 0 {
			t.Errorf("ClassCounts[%s] = %d, %v; want 0, present", class, n, ok)
		}
	}
}

func TestClassCounts(t *testing.T) {
	f := New(DefaultConfig())
	universe := []models.Scheme{
		scheme(1, models.AssetEquity, 3, 5000),
		scheme(2, models.AssetEquity, 4, 5000),
		scheme(3, models.AssetDebt, 1, 5000),
		scheme(4, models.AssetHybrid, 3, 5000),
	}
	out := f.Apply(universe, baseProfile(), 0)
	if out.ClassCounts[models.AssetEquity] != 2 ||
		out.ClassCounts[models.AssetDebt] != 1 ||
		out.ClassCounts[models.AssetHybrid] != 1 ||
		out.ClassCounts[models.AssetOther] != 0 {
		t.Errorf("ClassCounts = %v", out.ClassCounts)
	}
}
