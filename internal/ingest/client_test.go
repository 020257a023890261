// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rsondhi/fundcompass/internal/features"
	"github.com/rsondhi/fundcompass/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg)
}

func TestSchemeList(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mf" {
			t.Errorf("path = %q, want /mf", r.URL.Path)
		}
		w.Write([]byte(`[{"schemeCode":120503,"schemeName":"SBI Liquid Fund - Direct Plan"},{"schemeCode":118989,"schemeName":"HDFC Flexi Cap Fund"}]`))
	})

	refs, err := c.SchemeList(context.Background())
	if err != nil {
		t.Fatalf("SchemeList() = %v", err)
	}
	if len(refs) != 2 || refs[0].SchemeCode != 120503 || refs[1].SchemeName != "HDFC Flexi Cap Fund" {
		t.Errorf("refs = %+v", refs)
	}
}

func TestSchemeHistory(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mf/120503" {
			t.Errorf("path = %q, want /mf/120503", r.URL.Path)
		}
		w.Write([]byte(`{
			"meta":{"fund_house":"SBI Mutual Fund","scheme_type":"Open Ended","scheme_category":"Debt Scheme - Liquid Fund","scheme_code":120503,"scheme_name":"SBI Liquid Fund - Direct Plan - Growth"},
			"data":[
				{"date":"21-11-2025","nav":"3912.4821"},
				{"date":"20-11-2025","nav":"3911.7650"},
				{"date":"not-a-date","nav":"1.0"},
				{"date":"19-11-2025","nav":"garbage"}
			],
			"status":"SUCCESS"
		}`))
	})

	h, err := c.SchemeHistory(context.Background(), 120503)
	if err != nil {
		t.Fatalf("SchemeHistory() = %v", err)
	}
	if h.Meta.FundHouse != "SBI Mutual Fund" || h.Meta.SchemeCode != 120503 {
		t.Errorf("meta = %+v", h.Meta)
	}
	// Malformed rows are dropped silently.
	if len(h.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(h.Points))
	}
	want := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)
	if !h.Points[0].Date.Equal(want) {
		t.Errorf("date = %v, want %v (DD-MM-YYYY parsing)", h.Points[0].Date, want)
	}
	if h.Points[0].NAV != 3912.4821 {
		t.Errorf("nav = %v", h.Points[0].NAV)
	}
}

func TestSchemeHistoryProviderError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ERROR"}`))
	})
	if _, err := c.SchemeHistory(context.Background(), 1); err == nil {
		t.Error("provider error status not surfaced")
	}
}

func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	cfg.BreakerFailureThreshold = 3
	c := NewClient(cfg)

	for i := 0; i < 3; i++ {
		if _, err := c.SchemeList(context.Background()); err == nil {
			t.Fatal("expected failure from upstream 502")
		}
	}
	// The circuit is now open; the next call must fail fast without a
	// request reaching the server.
	before := hits
	if _, err := c.SchemeList(context.Background()); err == nil {
		t.Fatal("expected open-circuit rejection")
	}
	if hits != before {
		t.Error("open circuit let a request through")
	}
}

func TestPlanFromName(t *testing.T) {
	tests := []struct {
		name string
		want models.PlanType
	}{
		{"SBI Liquid Fund - Direct Plan - Growth", models.PlanDirect},
		{"SBI Liquid Fund - DIRECT - Growth", models.PlanDirect},
		{"SBI Liquid Fund - Regular Plan - Growth", models.PlanRegular},
		{"HDFC Flexi Cap Fund", models.PlanRegular},
	}
	for _, tt := range tests {
		if got := PlanFromName(tt.name); got != tt.want {
			t.Errorf("PlanFromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBuildScheme(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	h := &SchemeHistory{
		Meta: SchemeMeta{
			FundHouse:      "HDFC Mutual Fund",
			SchemeCategory: "Debt Scheme - Liquid Fund",
			SchemeCode:     119091,
			SchemeName:     "HDFC Liquid Fund - Direct Plan - Growth",
		},
	}
	nav := 100.0
	for d := 0; d < 3*365+10; d++ {
		h.Points = append(h.Points, features.NAVPoint{Date: start.AddDate(0, 0, d), NAV: nav})
		nav *= 1.00018
	}

	s := BuildScheme(h, models.Float64(45000))
	if s.SchemeCode != 119091 || s.Plan != models.PlanDirect {
		t.Errorf("scheme = %+v", s)
	}
	if s.NAV == nil || s.CAGR1Y == nil || s.CAGR3Y == nil {
		t.Error("derived metrics missing from 3-year history")
	}
	if s.CAGR5Y != nil {
		t.Error("CAGR5Y present from a 3-year history")
	}
	if s.EstimatedTER == nil {
		t.Fatal("EstimatedTER not filled")
	}
	// Liquid direct with >20k Cr AUM: 0.25 - 0.05 - 0.20, floored at 0.05.
	if *s.EstimatedTER != 0.05 {
		t.Errorf("EstimatedTER = %v, want 0.05", *s.EstimatedTER)
	}
}
