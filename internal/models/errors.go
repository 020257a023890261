// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package models

import (
	"fmt"
	"strings"
)

// InputDomainError reports a profile or request field outside its declared
// range or enumeration. It is surfaced immediately and the offending value
// is never coerced.
type InputDomainError struct {
	// Field is the snake_case field name as it appears on the wire.
	Field string

	// Value is the rejected value.
	Value any

	// Reason describes the violated constraint.
	Reason string
}

func (e *InputDomainError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// DataIncompleteError reports a scheme table missing required columns.
// It is fatal at load time; the pipeline never starts on an incomplete table.
type DataIncompleteError struct {
	// Missing lists the absent required columns.
	Missing []string
}

func (e *DataIncompleteError) Error() string {
	return fmt.Sprintf("scheme table missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ResultStatus distinguishes a populated recommendation list from the
// explicit empty outcome. An empty outcome is a normal value, not an error.
type ResultStatus string

const (
	// StatusOK indicates a non-empty recommendation list.
	StatusOK ResultStatus = "ok"

	// StatusNoEligibleSchemes indicates the suitability filter removed
	// every scheme for this profile.
	StatusNoEligibleSchemes ResultStatus = "no_eligible_schemes"
)
