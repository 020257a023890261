// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package classify

import (
	"testing"

	"github.com/rsondhi/fundcompass/internal/models"
)

func TestClassifyKeywordPriority(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		name        string
		schemeName  string
		rawCategory string
		wantClass   models.AssetClass
		wantGrade   int
	}{
		{
			name:        "debt index beats equity index token",
			schemeName:  "Edelweiss NIFTY PSU Bond Plus SDL Apr 2026 50:50 Index Fund",
			rawCategory: "Other",
			wantClass:   models.AssetDebt,
			wantGrade:   2,
		},
		{
			name:        "gilt index stays debt",
			schemeName:  "SBI CPSE Bond Plus SDL Sep 2026 Index Fund - Direct Plan",
			rawCategory: "Index Funds",
			wantClass:   models.AssetDebt,
			wantGrade:   2,
		},
		{
			name:        "liquid fund grade 1",
			schemeName:  "HDFC Liquid Fund - Direct Plan - Growth",
			rawCategory: "Debt Scheme - Liquid Fund",
			wantClass:   models.AssetDebt,
			wantGrade:   1,
		},
		{
			name:        "overnight fund grade 1",
			schemeName:  "Axis Overnight Fund",
			rawCategory: "Debt Scheme",
			wantClass:   models.AssetDebt,
			wantGrade:   1,
		},
		{
			name:        "ultra short grade 2",
			schemeName:  "ICICI Prudential Ultra Short Term Fund",
			rawCategory: "Debt Scheme",
			wantClass:   models.AssetDebt,
			wantGrade:   2,
		},
		{
			name:        "credit risk grade 3",
			schemeName:  "HDFC Credit Risk Debt Fund",
			rawCategory: "Debt Scheme - Credit Risk Fund",
			wantClass:   models.AssetDebt,
			wantGrade:   3,
		},
		{
			name:        "arbitrage is hybrid grade 2",
			schemeName:  "Kotak Equity Arbitrage Fund",
			rawCategory: "Hybrid Scheme - Arbitrage Fund",
			wantClass:   models.AssetHybrid,
			wantGrade:   2,
		},
		{
			name:        "balanced advantage is hybrid",
			schemeName:  "HDFC Balanced Advantage Fund",
			rawCategory: "Hybrid Scheme",
			wantClass:   models.AssetHybrid,
			wantGrade:   3,
		},
		{
			name:        "large cap equity grade 3",
			schemeName:  "Mirae Asset Large Cap Fund",
			rawCategory: "Equity Scheme - Large Cap Fund",
			wantClass:   models.AssetEquity,
			wantGrade:   3,
		},
		{
			name:        "plain equity index grade 3",
			schemeName:  "UTI Nifty 50 Index Fund",
			rawCategory: "Other Scheme - Index Funds",
			wantClass:   models.AssetEquity,
			wantGrade:   3,
		},
		{
			name:        "small cap grade 5",
			schemeName:  "Nippon India Small Cap Fund",
			rawCategory: "Equity Scheme - Small Cap Fund",
			wantClass:   models.AssetEquity,
			wantGrade:   5,
		},
		{
			name:        "sectoral category grade 5",
			schemeName:  "ICICI Prudential Pharma Healthcare Fund",
			rawCategory: "Equity Scheme - Sectoral",
			wantClass:   models.AssetEquity,
			wantGrade:   5,
		},
		{
			name:        "mid cap grade 4",
			schemeName:  "Kotak Emerging Equity Mid Cap Fund",
			rawCategory: "Equity Scheme - Mid Cap Fund",
			wantClass:   models.AssetEquity,
			wantGrade:   4,
		},
		{
			name:        "elss default equity grade",
			schemeName:  "Axis ELSS Tax Saver Fund",
			rawCategory: "Equity Scheme - ELSS",
			wantClass:   models.AssetEquity,
			wantGrade:   4,
		},
		{
			name:        "unmatched text falls to other",
			schemeName:  "XYZ Opportunities Growth Plan",
			rawCategory: "",
			wantClass:   models.AssetOther,
			wantGrade:   3,
		},
		{
			name:        "keyword only in category",
			schemeName:  "SBI Magnum Fund",
			rawCategory: "Debt Scheme - Gilt Fund",
			wantClass:   models.AssetDebt,
			wantGrade:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, grade := c.Classify(tt.schemeName, tt.rawCategory)
			if class != tt.wantClass || grade != tt.wantGrade {
				t.Errorf("Classify(%q, %q) = (%s, %d), want (%s, %d)",
					tt.schemeName, tt.rawCategory, class, grade, tt.wantClass, tt.wantGrade)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := New(DefaultConfig())
	schemes := []models.Scheme{
		{SchemeCode: 1, SchemeName: "HDFC Liquid Fund", RawCategory: "Debt Scheme"},
		{SchemeCode: 2, SchemeName: "Nippon India Small Cap Fund", RawCategory: "Equity Scheme"},
		{SchemeCode: 3, SchemeName: "Tata Balanced Advantage Fund", RawCategory: "Hybrid Scheme"},
	}

	first := c.ClassifyAll(schemes)
	second := c.ClassifyAll(first)
	for i := range first {
		if first[i].AssetClass != second[i].AssetClass || first[i].RiskGrade != second[i].RiskGrade {
			t.Errorf("scheme %d not idempotent: first (%s,%d), second (%s,%d)",
				first[i].SchemeCode,
				first[i].AssetClass, first[i].RiskGrade,
				second[i].AssetClass, second[i].RiskGrade)
		}
	}
	// Input slice must stay untouched.
	if schemes[0].AssetClass != "" {
		t.Error("ClassifyAll mutated its input")
	}
}

func TestTopAMC(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		fundHouse string
		want      bool
	}{
		{"SBI Mutual Fund", true},
		{"ICICI Prudential Mutual Fund", true},
		{"Aditya Birla Sun Life Mutual Fund", true},
		{"Mirae Asset Mutual Fund", true},
		{"Quant Mutual Fund", false},
		{"PPFAS Mutual Fund", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.TopAMC(tt.fundHouse); got != tt.want {
			t.Errorf("TopAMC(%q) = %v, want %v", tt.fundHouse, got, tt.want)
		}
	}
}

func TestApplySetsDerivedFields(t *testing.T) {
	c := New(DefaultConfig())
	s := c.Apply(models.Scheme{
		SchemeCode:  120503,
		SchemeName:  "SBI Liquid Fund - Direct Plan - Growth",
		FundHouse:   "SBI Mutual Fund",
		RawCategory: "Debt Scheme - Liquid Fund",
	})
	if s.AssetClass != models.AssetDebt || s.RiskGrade != 1 || !s.AMCReputation {
		t.Errorf("Apply() = %s/%d/amc=%v, want Debt/1/amc=true", s.AssetClass, s.RiskGrade, s.AMCReputation)
	}
}
