// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package engine

import (
	"time"

	"github.com/rsondhi/fundcompass/internal/classify"
	"github.com/rsondhi/fundcompass/internal/models"
)

// Snapshot is one immutable, fully classified scheme table. A snapshot is
// built once, validated at build time and read-only afterwards, so any
// number of concurrent requests may share it without locking.
type Snapshot struct {
	schemes  []models.Scheme
	byCode   map[int64]int
	loadedAt time.Time
}

// NewSnapshot validates and classifies the raw scheme rows into an
// immutable snapshot. A *models.DataIncompleteError is returned when any
// required column is unpopulated; the pipeline never starts on an
// incomplete table.
func NewSnapshot(raw []models.Scheme, classifier *classify.Classifier) (*Snapshot, error) {
	if err := validateColumns(raw); err != nil {
		return nil, err
	}

	schemes := classifier.ClassifyAll(raw)
	byCode := make(map[int64]int, len(schemes))
	for i, s := range schemes {
		byCode[s.SchemeCode] = i
	}
	return &Snapshot{
		schemes:  schemes,
		byCode:   byCode,
		loadedAt: time.Now().UTC(),
	}, nil
}

// validateColumns checks the required identity columns over all rows.
func validateColumns(raw []models.Scheme) error {
	var missingCode, missingName bool
	for _, s := range raw {
		if s.SchemeCode <= 0 {
			missingCode = true
		}
		if s.SchemeName == "" {
			missingName = true
		}
	}
	var missing []string
	if missingCode {
		missing = append(missing, "scheme_code")
	}
	if missingName {
		missing = append(missing, "scheme_name")
	}
	if len(missing) > 0 {
		return &models.DataIncompleteError{Missing: missing}
	}
	return nil
}

// Schemes returns the classified scheme table. Callers must treat the
// slice as read-only.
func (s *Snapshot) Schemes() []models.Scheme {
	return s.schemes
}

// Scheme looks up one scheme by code.
func (s *Snapshot) Scheme(code int64) (models.Scheme, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return models.Scheme{}, false
	}
	return s.schemes[i], true
}

// Len returns the number of schemes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.schemes)
}

// LoadedAt returns the snapshot build time.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// ClassCounts returns the per-asset-class scheme counts.
func (s *Snapshot) ClassCounts() map[models.AssetClass]int {
	counts := make(map[models.AssetClass]int, len(models.AssetClasses))
	for _, class := range models.AssetClasses {
		counts[class] = 0
	}
	for _, sch := range s.schemes {
		counts[sch.AssetClass]++
	}
	return counts
}
