// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package features derives return and risk metrics from raw NAV history.
//
// Every metric is optional: a series too short for a window yields a nil
// metric, never an error. The ranker downstream imputes missing metrics to
// the cohort mean, so sparse history degrades a scheme's score precision,
// not its eligibility.
package features

import (
	"math"
	"sort"
	"time"

	"github.com/rsondhi/fundcompass/internal/models"
)

const (
	// TradingDaysPerYear annualizes daily return statistics.
	TradingDaysPerYear = 252

	// RiskFreeRate is the annual risk-free rate used in the Sharpe ratio.
	RiskFreeRate = 0.06

	// MinReturnObservations is the minimum number of daily returns
	// required before volatility and Sharpe are reported.
	MinReturnObservations = 30
)

// NAVPoint is one dated NAV observation.
type NAVPoint struct {
	Date time.Time
	NAV  float64
}

// Metrics are the derived per-scheme figures. Any field may be nil when
// the underlying history is too short.
type Metrics struct {
	LatestNAV    *float64
	AbsReturn1Y  *float64
	CAGR3Y       *float64
	CAGR5Y       *float64
	Volatility1Y *float64
	SharpeRatio  *float64
}

// Compute derives Metrics from a NAV series. The series may arrive in any
// order (the provider sends newest-first); zero or negative NAVs are
// dropped. An empty series yields zero-valued Metrics.
func Compute(series []NAVPoint) Metrics {
	points := make([]NAVPoint, 0, len(series))
	for _, p := range series {
		if p.NAV > 0 && !p.Date.IsZero() {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return Metrics{}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	latest := points[len(points)-1]
	m := Metrics{LatestNAV: models.Float64(latest.NAV)}

	// Windows are fixed 365-day multiples back from the latest point.
	if nav1y := navOnOrBefore(points, latest.Date.AddDate(0, 0, -365)); nav1y != nil {
		m.AbsReturn1Y = models.Float64(latest.NAV / *nav1y - 1)
	}
	if nav3y := navOnOrBefore(points, latest.Date.AddDate(0, 0, -3*365)); nav3y != nil {
		m.CAGR3Y = models.Float64(math.Pow(latest.NAV / *nav3y, 1.0/3) - 1)
	}
	if nav5y := navOnOrBefore(points, latest.Date.AddDate(0, 0, -5*365)); nav5y != nil {
		m.CAGR5Y = models.Float64(math.Pow(latest.NAV / *nav5y, 1.0/5) - 1)
	}

	m.Volatility1Y, m.SharpeRatio = riskMetrics(points)
	return m
}

// navOnOrBefore returns the last NAV observed on or before cutoff, nil
// when the series does not reach back that far.
func navOnOrBefore(points []NAVPoint, cutoff time.Time) *float64 {
	// First index strictly after cutoff.
	i := sort.Search(len(points), func(i int) bool { return points[i].Date.After(cutoff) })
	if i == 0 {
		return nil
	}
	return models.Float64(points[i-1].NAV)
}

// riskMetrics computes annualized volatility and Sharpe from the last
// TradingDaysPerYear daily returns. Sample standard deviation; Sharpe is
// nil when volatility is zero.
func riskMetrics(points []NAVPoint) (vol, sharpe *float64) {
	if len(points) < 2 {
		return nil, nil
	}
	window := points
	if len(window) > TradingDaysPerYear+1 {
		window = window[len(window)-(TradingDaysPerYear+1):]
	}

	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		returns = append(returns, window[i].NAV/window[i-1].NAV-1)
	}
	if len(returns) < MinReturnObservations {
		return nil, nil
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(returns)-1))

	annVol := std * math.Sqrt(TradingDaysPerYear)
	vol = models.Float64(annVol)
	if annVol > 0 {
		annReturn := mean * TradingDaysPerYear
		sharpe = models.Float64((annReturn - RiskFreeRate) / annVol)
	}
	return vol, sharpe
}
