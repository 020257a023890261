// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package api exposes the recommendation engine over HTTP.
//
// All endpoints share one response envelope so clients can branch on
// success before touching the payload.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/rsondhi/fundcompass/internal/logging"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	// Success indicates whether the request was served.
	Success bool `json:"success"`

	// Data holds the payload, nil on error.
	Data interface{} `json:"data,omitempty"`

	// Error holds error details, nil on success.
	Error *APIError `json:"error,omitempty"`

	// Meta holds response metadata.
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError carries a machine-readable code alongside the human message.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// APIMeta carries tracing metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes used across the API.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// writeJSON encodes the envelope. Encoding failures are logged, not
// surfaced; headers are already written by then.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp APIResponse) {
	resp.Meta = &APIMeta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// writeData writes a successful envelope around data.
func writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, r, status, APIResponse{Success: true, Data: data})
}

// writeError writes an error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, APIResponse{Success: false, Error: &APIError{Code: code, Message: message}})
}
