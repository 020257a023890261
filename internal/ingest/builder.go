// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package ingest

import (
	"github.com/rsondhi/fundcompass/internal/features"
	"github.com/rsondhi/fundcompass/internal/models"
	"github.com/rsondhi/fundcompass/internal/ter"
)

// BuildScheme merges one fetched history with its derived metrics and the
// TER estimate into a scheme row ready for the store. aumCr comes from a
// separate source and may be nil; derived metrics then skip the
// scale-sensitive parts and the ranker imputes what is missing.
func BuildScheme(h *SchemeHistory, aumCr *float64) models.Scheme {
	m := features.Compute(h.Points)

	s := models.Scheme{
		SchemeCode:   h.Meta.SchemeCode,
		SchemeName:   h.Meta.SchemeName,
		FundHouse:    h.Meta.FundHouse,
		RawCategory:  h.Meta.SchemeCategory,
		Plan:         PlanFromName(h.Meta.SchemeName),
		AUMCr:        aumCr,
		NAV:          m.LatestNAV,
		CAGR1Y:       m.AbsReturn1Y,
		CAGR3Y:       m.CAGR3Y,
		CAGR5Y:       m.CAGR5Y,
		Volatility1Y: m.Volatility1Y,
		SharpeRatio:  m.SharpeRatio,
	}
	s.EstimatedTER = ter.EstimateScheme(s)
	return s
}
