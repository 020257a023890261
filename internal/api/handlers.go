// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rsondhi/fundcompass/internal/engine"
	"github.com/rsondhi/fundcompass/internal/models"
	"github.com/rsondhi/fundcompass/internal/validation"
)

// recommendRequest is the wire form of one recommendation request.
// Enumerations arrive as their display strings and are parsed into the
// ordinal profile types after structural validation.
type recommendRequest struct {
	Age               int      `json:"age" validate:"required,gte=18,lte=80"`
	IncomeBracket     string   `json:"income_bracket" validate:"required"`
	MonthlySIP        float64  `json:"monthly_sip" validate:"gte=0"`
	RiskTolerance     string   `json:"risk_tolerance" validate:"required,oneof=Low Moderate High 'Very High'"`
	InvestmentHorizon string   `json:"investment_horizon" validate:"required"`
	Experience        string   `json:"experience" validate:"required,oneof=Beginner Intermediate Expert"`
	Goals             []string `json:"goals" validate:"omitempty,max=5,dive,required"`
	TopN              int      `json:"top_n" validate:"omitempty,gte=1"`
	MinAUMCr          float64  `json:"min_aum_cr" validate:"omitempty,gte=0"`
}

// toProfile parses the enumeration strings. Each parse failure is already
// a *models.InputDomainError naming the wire field.
func (req *recommendRequest) toProfile() (models.InvestorProfile, error) {
	var p models.InvestorProfile

	income, err := models.ParseIncomeBracket(req.IncomeBracket)
	if err != nil {
		return p, err
	}
	risk, err := models.ParseRiskTolerance(req.RiskTolerance)
	if err != nil {
		return p, err
	}
	horizon, err := models.ParseHorizon(req.InvestmentHorizon)
	if err != nil {
		return p, err
	}
	exp, err := models.ParseExperience(req.Experience)
	if err != nil {
		return p, err
	}

	goals := make([]models.Goal, 0, len(req.Goals))
	for _, g := range req.Goals {
		goals = append(goals, models.Goal(g))
	}

	p = models.InvestorProfile{
		Age:           req.Age,
		IncomeBracket: income,
		MonthlySIP:    req.MonthlySIP,
		RiskTolerance: risk,
		Horizon:       horizon,
		Experience:    exp,
		Goals:         goals,
	}
	return p, p.Validate()
}

// decode parses the request body into dst and validates its tags.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return validation.Struct(dst)
}

// respondEngineError maps engine failures onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *models.InputDomainError
	switch {
	case errors.As(err, &domainErr):
		writeError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, domainErr.Error())
	case errors.Is(err, engine.ErrNoSnapshot):
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "scheme data not loaded yet")
	default:
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "recommendation failed")
	}
}

// handleRecommend serves POST /api/v1/recommend.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decode(r, &req); err != nil {
		var domainErr *models.InputDomainError
		if errors.As(err, &domainErr) {
			writeError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, domainErr.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	profile, err := req.toProfile()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	result, err := s.engine.Recommend(r.Context(), profile, engine.Options{TopN: req.TopN, MinAUMCr: req.MinAUMCr})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, result)
}

// batchRequest fans one call out over several profiles.
type batchRequest struct {
	Profiles []recommendRequest `json:"profiles" validate:"required,min=1"`
}

// batchItem is the per-profile outcome. Exactly one of Result and Error
// is set; one bad profile does not fail its siblings.
type batchItem struct {
	Result *engine.Result `json:"result,omitempty"`
	Error  *APIError      `json:"error,omitempty"`
}

// handleRecommendBatch serves POST /api/v1/recommend/batch. Profiles are
// evaluated concurrently and results keep request order.
func (s *Server) handleRecommendBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	if len(req.Profiles) > s.cfg.MaxBatchProfiles {
		writeError(w, r, http.StatusBadRequest, ErrCodeValidationFailed,
			fmt.Sprintf("batch size %d exceeds limit %d", len(req.Profiles), s.cfg.MaxBatchProfiles))
		return
	}

	items := make([]batchItem, len(req.Profiles))
	var wg sync.WaitGroup
	for i := range req.Profiles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := validation.Struct(&req.Profiles[i])
			var profile models.InvestorProfile
			if err == nil {
				profile, err = req.Profiles[i].toProfile()
			}
			if err == nil {
				var result *engine.Result
				result, err = s.engine.Recommend(r.Context(), profile, engine.Options{
					TopN:     req.Profiles[i].TopN,
					MinAUMCr: req.Profiles[i].MinAUMCr,
				})
				if err == nil {
					items[i] = batchItem{Result: result}
					return
				}
			}
			items[i] = batchItem{Error: batchError(err)}
		}(i)
	}
	wg.Wait()

	writeData(w, r, http.StatusOK, items)
}

// batchError classifies a per-profile failure without an HTTP status of
// its own; the batch call itself still returns 200.
func batchError(err error) *APIError {
	var domainErr *models.InputDomainError
	switch {
	case errors.As(err, &domainErr):
		return &APIError{Code: ErrCodeValidationFailed, Message: domainErr.Error()}
	case errors.Is(err, engine.ErrNoSnapshot):
		return &APIError{Code: ErrCodeServiceUnavailable, Message: "scheme data not loaded yet"}
	default:
		return &APIError{Code: ErrCodeInternalError, Message: "recommendation failed"}
	}
}

// handleScheme serves GET /api/v1/schemes/{schemeCode} from the active
// snapshot.
func (s *Server) handleScheme(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseInt(chi.URLParam(r, "schemeCode"), 10, 64)
	if err != nil || code <= 0 {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "scheme code must be a positive integer")
		return
	}

	snap := s.engine.Snapshot()
	if snap == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "scheme data not loaded yet")
		return
	}
	scheme, ok := snap.Scheme(code)
	if !ok {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("scheme %d not found", code))
		return
	}
	writeData(w, r, http.StatusOK, scheme)
}

// handleStats serves GET /api/v1/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, s.engine.Stats())
}

// healthStatus is the health endpoint payload.
type healthStatus struct {
	Status          string    `json:"status"`
	SnapshotLoaded  bool      `json:"snapshot_loaded"`
	SnapshotSchemes int       `json:"snapshot_schemes"`
	Time            time.Time `json:"time"`
}

// handleHealth serves GET /api/v1/health. The process is degraded, not
// down, while it waits for the first snapshot.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	status := healthStatus{Status: "ok", Time: time.Now().UTC()}
	code := http.StatusOK
	if snap == nil {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		status.SnapshotLoaded = true
		status.SnapshotSchemes = snap.Len()
	}
	writeData(w, r, code, status)
}
