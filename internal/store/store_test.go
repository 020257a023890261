// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rsondhi/fundcompass/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{}) // in-memory
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := []models.Scheme{
		{
			SchemeCode:   118989,
			SchemeName:   "HDFC Flexi Cap Fund - Direct Plan",
			FundHouse:    "HDFC Mutual Fund",
			RawCategory:  "Equity Scheme - Flexi Cap Fund",
			Plan:         models.PlanDirect,
			NAV:          models.Float64(1650.2),
			AUMCr:        models.Float64(45000),
			EstimatedTER: models.Float64(0.80),
			CAGR3Y:       models.Float64(0.21),
			SharpeRatio:  models.Float64(1.1),
		},
		{
			SchemeCode:  120503,
			SchemeName:  "SBI Liquid Fund - Direct Plan",
			FundHouse:   "SBI Mutual Fund",
			RawCategory: "Debt Scheme - Liquid Fund",
			Plan:        models.PlanDirect,
			// All numeric metrics unknown.
		},
	}
	if err := s.UpsertSchemes(ctx, in); err != nil {
		t.Fatalf("UpsertSchemes() = %v", err)
	}

	out, err := s.LoadSchemes(ctx)
	if err != nil {
		t.Fatalf("LoadSchemes() = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d schemes, want 2", len(out))
	}
	// Ordered by scheme_code.
	if out[0].SchemeCode != 118989 || out[1].SchemeCode != 120503 {
		t.Errorf("order = %d, %d", out[0].SchemeCode, out[1].SchemeCode)
	}
	if out[0].FundHouse != "HDFC Mutual Fund" || out[0].Plan != models.PlanDirect {
		t.Errorf("scheme = %+v", out[0])
	}
	if out[0].CAGR3Y == nil || *out[0].CAGR3Y != 0.21 {
		t.Errorf("CAGR3Y = %v, want 0.21", out[0].CAGR3Y)
	}
	if out[1].NAV != nil || out[1].SharpeRatio != nil {
		t.Error("unknown metrics must load as nil")
	}
}

func TestUpsertReplacesExistingRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := models.Scheme{SchemeCode: 1, SchemeName: "Fund A", NAV: models.Float64(10)}
	if err := s.UpsertSchemes(ctx, []models.Scheme{first}); err != nil {
		t.Fatal(err)
	}
	updated := first
	updated.NAV = models.Float64(11.5)
	if err := s.UpsertSchemes(ctx, []models.Scheme{updated}); err != nil {
		t.Fatal(err)
	}

	out, err := s.LoadSchemes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("loaded %d rows, want 1 after replace", len(out))
	}
	if *out[0].NAV != 11.5 {
		t.Errorf("NAV = %v, want 11.5", *out[0].NAV)
	}

	n, err := s.SchemeCount(ctx)
	if err != nil || n != 1 {
		t.Errorf("SchemeCount() = %d, %v", n, err)
	}
}

func TestLoadRejectsIncompleteTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Simulate a table produced by a foreign tool without the name column.
	if _, err := s.db.Exec(`DROP TABLE schemes`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`CREATE TABLE schemes (scheme_code BIGINT)`); err != nil {
		t.Fatal(err)
	}

	_, err := s.LoadSchemes(ctx)
	var incomplete *models.DataIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want *DataIncompleteError", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != "scheme_name" {
		t.Errorf("missing = %v, want [scheme_name]", incomplete.Missing)
	}
}

func TestLoadEmptyTable(t *testing.T) {
	s := openTestStore(t)
	out, err := s.LoadSchemes(context.Background())
	if err != nil {
		t.Fatalf("LoadSchemes() = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("loaded %d rows from empty table", len(out))
	}
}
