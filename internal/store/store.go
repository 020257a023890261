// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package store persists the merged scheme table in DuckDB.
//
// The store is the durable side of the snapshot lifecycle: ingestion
// upserts merged rows here, and the engine loads the full table into an
// in-memory snapshot at startup and after every refresh. DuckDB keeps the
// whole table in one file (or in memory for tests) and scans it in
// milliseconds at this scale.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver
	"github.com/rs/zerolog"

	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/models"
)

// requiredColumns are the columns the pipeline cannot start without.
var requiredColumns = []string{"scheme_code", "scheme_name"}

// Config holds the store configuration.
type Config struct {
	// Path is the database file; empty means in-memory.
	Path string
}

// Store wraps the DuckDB scheme table.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (or creates) the database and ensures the schema exists.
func Open(cfg Config) (*Store, error) {
	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging duckdb: %w", err)
	}

	s := &Store{db: db, logger: logging.WithComponent("store")}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Info().Str("path", cfg.Path).Msg("Scheme store opened")
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS schemes (
    scheme_code   BIGINT PRIMARY KEY,
    scheme_name   VARCHAR NOT NULL,
    fund_house    VARCHAR,
    raw_category  VARCHAR,
    plan          VARCHAR,
    nav           DOUBLE,
    aum_cr        DOUBLE,
    estimated_ter DOUBLE,
    cagr_1y       DOUBLE,
    cagr_3y       DOUBLE,
    cagr_5y       DOUBLE,
    volatility_1y DOUBLE,
    sharpe_ratio  DOUBLE,
    min_sip       DOUBLE,
    updated_at    TIMESTAMP
)`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// UpsertSchemes writes merged rows, replacing existing scheme codes. The
// whole batch commits in one transaction so readers never observe a
// half-written refresh.
func (s *Store) UpsertSchemes(ctx context.Context, schemes []models.Scheme) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO schemes (
    scheme_code, scheme_name, fund_house, raw_category, plan,
    nav, aum_cr, estimated_ter, cagr_1y, cagr_3y, cagr_5y,
    volatility_1y, sharpe_ratio, min_sip, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, sch := range schemes {
		if _, err := stmt.ExecContext(ctx,
			sch.SchemeCode, sch.SchemeName, sch.FundHouse, sch.RawCategory, string(sch.Plan),
			nullable(sch.NAV), nullable(sch.AUMCr), nullable(sch.EstimatedTER),
			nullable(sch.CAGR1Y), nullable(sch.CAGR3Y), nullable(sch.CAGR5Y),
			nullable(sch.Volatility1Y), nullable(sch.SharpeRatio), nullable(sch.MinSIP),
			now,
		); err != nil {
			return fmt.Errorf("upserting scheme %d: %w", sch.SchemeCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	s.logger.Debug().Int("schemes", len(schemes)).Msg("Schemes upserted")
	return nil
}

// LoadSchemes reads the full table. A *models.DataIncompleteError is
// returned when the table is missing required columns, which can happen
// when the store file was produced by an older or foreign tool.
func (s *Store) LoadSchemes(ctx context.Context) ([]models.Scheme, error) {
	if err := s.checkColumns(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT scheme_code, scheme_name, fund_house, raw_category, plan,
       nav, aum_cr, estimated_ter, cagr_1y, cagr_3y, cagr_5y,
       volatility_1y, sharpe_ratio, min_sip
FROM schemes
ORDER BY scheme_code`)
	if err != nil {
		return nil, fmt.Errorf("querying schemes: %w", err)
	}
	defer rows.Close()

	var schemes []models.Scheme
	for rows.Next() {
		var sch models.Scheme
		var fundHouse, rawCategory, plan sql.NullString
		var nav, aum, ter, c1, c3, c5, vol, sharpe, minSIP sql.NullFloat64
		if err := rows.Scan(
			&sch.SchemeCode, &sch.SchemeName, &fundHouse, &rawCategory, &plan,
			&nav, &aum, &ter, &c1, &c3, &c5, &vol, &sharpe, &minSIP,
		); err != nil {
			return nil, fmt.Errorf("scanning scheme row: %w", err)
		}
		sch.FundHouse = fundHouse.String
		sch.RawCategory = rawCategory.String
		sch.Plan = models.PlanType(plan.String)
		sch.NAV = fromNull(nav)
		sch.AUMCr = fromNull(aum)
		sch.EstimatedTER = fromNull(ter)
		sch.CAGR1Y = fromNull(c1)
		sch.CAGR3Y = fromNull(c3)
		sch.CAGR5Y = fromNull(c5)
		sch.Volatility1Y = fromNull(vol)
		sch.SharpeRatio = fromNull(sharpe)
		sch.MinSIP = fromNull(minSIP)
		schemes = append(schemes, sch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schemes: %w", err)
	}
	return schemes, nil
}

// SchemeCount returns the number of stored schemes.
func (s *Store) SchemeCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM schemes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting schemes: %w", err)
	}
	return n, nil
}

// checkColumns verifies the required columns exist on the schemes table.
func (s *Store) checkColumns(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT column_name FROM information_schema.columns
WHERE table_name = 'schemes'`)
	if err != nil {
		return fmt.Errorf("inspecting schema: %w", err)
	}
	defer rows.Close()

	present := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning column name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &models.DataIncompleteError{Missing: missing}
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float64(v.Float64)
}
