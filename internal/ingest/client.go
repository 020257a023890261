// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package ingest fetches the scheme universe and NAV history from the
// public mfapi.in service.
//
// The provider is a free community API, so the client is deliberately
// polite: a token-bucket rate limiter paces requests and a circuit breaker
// sheds load when the upstream degrades instead of hammering it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/rsondhi/fundcompass/internal/features"
	"github.com/rsondhi/fundcompass/internal/logging"
	"github.com/rsondhi/fundcompass/internal/metrics"
	"github.com/rsondhi/fundcompass/internal/models"
)

// navDateFormat is the provider's DD-MM-YYYY date layout.
const navDateFormat = "02-01-2006"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the provider root, default https://api.mfapi.in.
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RequestsPerSecond paces outbound requests.
	RequestsPerSecond float64

	// Burst is the rate-limiter burst size.
	Burst int

	// BreakerFailureThreshold is the consecutive-failure count that
	// opens the circuit.
	BreakerFailureThreshold uint32

	// BreakerCooldown is how long the circuit stays open.
	BreakerCooldown time.Duration
}

// DefaultConfig returns the production client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:                 "https://api.mfapi.in",
		Timeout:                 15 * time.Second,
		RequestsPerSecond:       5,
		Burst:                   5,
		BreakerFailureThreshold: 5,
		BreakerCooldown:         30 * time.Second,
	}
}

// SchemeRef is one entry of the provider's scheme list.
type SchemeRef struct {
	SchemeCode int64  `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
}

// SchemeMeta is the provider's scheme metadata block.
type SchemeMeta struct {
	FundHouse      string `json:"fund_house"`
	SchemeType     string `json:"scheme_type"`
	SchemeCategory string `json:"scheme_category"`
	SchemeCode     int64  `json:"scheme_code"`
	SchemeName     string `json:"scheme_name"`
}

// SchemeHistory is one scheme's metadata plus its full NAV series,
// oldest-last as delivered by the provider.
type SchemeHistory struct {
	Meta   SchemeMeta
	Points []features.NAVPoint
}

// Client is a rate-limited, circuit-broken mfapi.in client.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a Client. Zero-valued cfg fields fall back to
// defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = def.BreakerFailureThreshold
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = def.BreakerCooldown
	}

	logger := logging.WithComponent("ingest")
	settings := gobreaker.Settings{
		Name:    "mfapi",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.IngestBreakerState.Set(breakerStateValue(to))
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// SchemeList fetches the full scheme directory.
func (c *Client) SchemeList(ctx context.Context) ([]SchemeRef, error) {
	body, err := c.get(ctx, "/mf")
	if err != nil {
		return nil, fmt.Errorf("fetching scheme list: %w", err)
	}
	var refs []SchemeRef
	if err := json.Unmarshal(body, &refs); err != nil {
		return nil, fmt.Errorf("decoding scheme list: %w", err)
	}
	return refs, nil
}

// SchemeHistory fetches one scheme's metadata and NAV history.
func (c *Client) SchemeHistory(ctx context.Context, schemeCode int64) (*SchemeHistory, error) {
	body, err := c.get(ctx, fmt.Sprintf("/mf/%d", schemeCode))
	if err != nil {
		return nil, fmt.Errorf("fetching scheme %d: %w", schemeCode, err)
	}

	var payload struct {
		Meta SchemeMeta `json:"meta"`
		Data []struct {
			Date string `json:"date"`
			NAV  string `json:"nav"`
		} `json:"data"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding scheme %d: %w", schemeCode, err)
	}
	if payload.Status != "" && payload.Status != "SUCCESS" {
		return nil, fmt.Errorf("scheme %d: provider status %q", schemeCode, payload.Status)
	}

	history := &SchemeHistory{
		Meta:   payload.Meta,
		Points: make([]features.NAVPoint, 0, len(payload.Data)),
	}
	for _, row := range payload.Data {
		date, err := time.Parse(navDateFormat, row.Date)
		if err != nil {
			continue // malformed rows are dropped, not fatal
		}
		nav, err := strconv.ParseFloat(row.NAV, 64)
		if err != nil || nav <= 0 {
			continue
		}
		history.Points = append(history.Points, features.NAVPoint{Date: date, NAV: nav})
	}
	return history, nil
}

// get performs one paced, breaker-guarded GET and returns the body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})

	switch {
	case err == nil:
		metrics.IngestRequests.WithLabelValues("ok").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.IngestRequests.WithLabelValues("rejected").Inc()
	default:
		metrics.IngestRequests.WithLabelValues("error").Inc()
	}
	return body, err
}

// PlanFromName derives the plan type from the scheme name: any "direct"
// token marks a direct plan, everything else sells through a distributor.
func PlanFromName(schemeName string) models.PlanType {
	if strings.Contains(strings.ToLower(schemeName), "direct") {
		return models.PlanDirect
	}
	return models.PlanRegular
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
