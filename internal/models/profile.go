// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

package models

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Profile age bounds. Profiles outside this range are rejected at the
// boundary with an InputDomainError.
const (
	MinAge = 18
	MaxAge = 80
)

// RiskTolerance is the investor's ordinal risk appetite.
// Ordering is meaningful: Low < Moderate < High < VeryHigh.
type RiskTolerance int

const (
	RiskLow RiskTolerance = iota + 1
	RiskModerate
	RiskHigh
	RiskVeryHigh
)

var riskToleranceNames = map[RiskTolerance]string{
	RiskLow:      "Low",
	RiskModerate: "Moderate",
	RiskHigh:     "High",
	RiskVeryHigh: "Very High",
}

// ParseRiskTolerance converts the wire string to a RiskTolerance.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	for v, name := range riskToleranceNames {
		if name == s {
			return v, nil
		}
	}
	return 0, &InputDomainError{Field: "risk_tolerance", Value: s, Reason: "unknown risk tolerance"}
}

func (r RiskTolerance) String() string {
	if name, ok := riskToleranceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RiskTolerance(%d)", int(r))
}

// Valid reports whether r is a declared enum value.
func (r RiskTolerance) Valid() bool {
	_, ok := riskToleranceNames[r]
	return ok
}

// MarshalJSON encodes the ordinal as its wire string.
func (r RiskTolerance) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes the wire string into the ordinal.
func (r *RiskTolerance) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseRiskTolerance(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Horizon is the investor's ordinal investment horizon.
// Ordering is meaningful: Emergency < 1-3yr < 3-5yr < 5-10yr < 10+yr.
type Horizon int

const (
	HorizonEmergency Horizon = iota + 1
	Horizon1To3Yr
	Horizon3To5Yr
	Horizon5To10Yr
	Horizon10YrPlus
)

var horizonNames = map[Horizon]string{
	HorizonEmergency: "Emergency",
	Horizon1To3Yr:    "1-3 years",
	Horizon3To5Yr:    "3-5 years",
	Horizon5To10Yr:   "5-10 years",
	Horizon10YrPlus:  "10+ years",
}

// ParseHorizon converts the wire string to a Horizon.
func ParseHorizon(s string) (Horizon, error) {
	for v, name := range horizonNames {
		if name == s {
			return v, nil
		}
	}
	return 0, &InputDomainError{Field: "investment_horizon", Value: s, Reason: "unknown investment horizon"}
}

func (h Horizon) String() string {
	if name, ok := horizonNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Horizon(%d)", int(h))
}

// Valid reports whether h is a declared enum value.
func (h Horizon) Valid() bool {
	_, ok := horizonNames[h]
	return ok
}

// ShortTerm reports whether the horizon mandates capital preservation
// (equity weight forced to zero, only low-risk debt eligible).
func (h Horizon) ShortTerm() bool {
	return h == HorizonEmergency || h == Horizon1To3Yr
}

// MarshalJSON encodes the ordinal as its wire string.
func (h Horizon) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes the wire string into the ordinal.
func (h *Horizon) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseHorizon(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Experience is the investor's ordinal investing experience.
// Ordering is meaningful: Beginner < Intermediate < Expert.
type Experience int

const (
	ExperienceBeginner Experience = iota + 1
	ExperienceIntermediate
	ExperienceExpert
)

var experienceNames = map[Experience]string{
	ExperienceBeginner:     "Beginner",
	ExperienceIntermediate: "Intermediate",
	ExperienceExpert:       "Expert",
}

// ParseExperience converts the wire string to an Experience.
func ParseExperience(s string) (Experience, error) {
	for v, name := range experienceNames {
		if name == s {
			return v, nil
		}
	}
	return 0, &InputDomainError{Field: "experience", Value: s, Reason: "unknown experience level"}
}

func (e Experience) String() string {
	if name, ok := experienceNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Experience(%d)", int(e))
}

// Valid reports whether e is a declared enum value.
func (e Experience) Valid() bool {
	_, ok := experienceNames[e]
	return ok
}

// MarshalJSON encodes the ordinal as its wire string.
func (e Experience) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON decodes the wire string into the ordinal.
func (e *Experience) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseExperience(s)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// IncomeBracket is the investor's ordinal annual income band (INR lakh).
type IncomeBracket int

const (
	IncomeBelow5L IncomeBracket = iota + 1
	Income5To10L
	Income10To25L
	Income25To50L
	IncomeAbove50L
)

var incomeBracketNames = map[IncomeBracket]string{
	IncomeBelow5L:  "<5L",
	Income5To10L:   "5-10L",
	Income10To25L:  "10-25L",
	Income25To50L:  "25-50L",
	IncomeAbove50L: ">50L",
}

// ParseIncomeBracket converts the wire string to an IncomeBracket.
func ParseIncomeBracket(s string) (IncomeBracket, error) {
	for v, name := range incomeBracketNames {
		if name == s {
			return v, nil
		}
	}
	return 0, &InputDomainError{Field: "income_bracket", Value: s, Reason: "unknown income bracket"}
}

func (i IncomeBracket) String() string {
	if name, ok := incomeBracketNames[i]; ok {
		return name
	}
	return fmt.Sprintf("IncomeBracket(%d)", int(i))
}

// Valid reports whether i is a declared enum value.
func (i IncomeBracket) Valid() bool {
	_, ok := incomeBracketNames[i]
	return ok
}

// MarshalJSON encodes the ordinal as its wire string.
func (i IncomeBracket) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON decodes the wire string into the ordinal.
func (i *IncomeBracket) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseIncomeBracket(s)
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Goal is a declared investment goal. Goals are a set, not an ordinal.
type Goal string

const (
	GoalWealthCreation Goal = "Wealth Creation"
	GoalRetirement     Goal = "Retirement"
	GoalChildEducation Goal = "Child Education"
	GoalTaxSaving      Goal = "Tax Saving"
	GoalEmergencyFund  Goal = "Emergency Fund"
)

// Valid reports whether g is a declared goal.
func (g Goal) Valid() bool {
	switch g {
	case GoalWealthCreation, GoalRetirement, GoalChildEducation, GoalTaxSaving, GoalEmergencyFund:
		return true
	}
	return false
}

// InvestorProfile is one investor's request-scoped profile. Profiles are
// immutable per request and never persisted by the engine.
type InvestorProfile struct {
	// Age in completed years, 18 to 80 inclusive.
	Age int `json:"age"`

	// IncomeBracket is the annual income band.
	IncomeBracket IncomeBracket `json:"income_bracket"`

	// MonthlySIP is the intended monthly subscription amount in INR.
	MonthlySIP float64 `json:"monthly_sip"`

	// RiskTolerance is the declared risk appetite.
	RiskTolerance RiskTolerance `json:"risk_tolerance"`

	// Horizon is the declared investment horizon.
	Horizon Horizon `json:"investment_horizon"`

	// Experience is the declared investing experience.
	Experience Experience `json:"experience"`

	// Goals is the set of declared goals. May be empty.
	Goals []Goal `json:"goals,omitempty"`
}

// Validate checks every field against its declared domain and returns an
// *InputDomainError for the first violation. Values are never coerced.
func (p *InvestorProfile) Validate() error {
	if p.Age < MinAge || p.Age > MaxAge {
		return &InputDomainError{Field: "age", Value: p.Age, Reason: fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)}
	}
	if !p.IncomeBracket.Valid() {
		return &InputDomainError{Field: "income_bracket", Value: int(p.IncomeBracket), Reason: "unknown income bracket"}
	}
	if p.MonthlySIP < 0 || math.IsNaN(p.MonthlySIP) || math.IsInf(p.MonthlySIP, 0) {
		return &InputDomainError{Field: "monthly_sip", Value: p.MonthlySIP, Reason: "must be a finite amount >= 0"}
	}
	if !p.RiskTolerance.Valid() {
		return &InputDomainError{Field: "risk_tolerance", Value: int(p.RiskTolerance), Reason: "unknown risk tolerance"}
	}
	if !p.Horizon.Valid() {
		return &InputDomainError{Field: "investment_horizon", Value: int(p.Horizon), Reason: "unknown investment horizon"}
	}
	if !p.Experience.Valid() {
		return &InputDomainError{Field: "experience", Value: int(p.Experience), Reason: "unknown experience level"}
	}
	for _, g := range p.Goals {
		if !g.Valid() {
			return &InputDomainError{Field: "goals", Value: string(g), Reason: "unknown goal"}
		}
	}
	return nil
}

// AllocationWeightTolerance is the permitted deviation of the weight sum
// from 1.
const AllocationWeightTolerance = 1e-6

// AllocationTarget maps each asset class to its target portfolio weight.
// A valid target has weights in [0,1] summing to 1 within tolerance.
type AllocationTarget map[AssetClass]float64

// Sum returns the total of all weights.
func (t AllocationTarget) Sum() float64 {
	var sum float64
	for _, w := range t {
		sum += w
	}
	return sum
}

// Validate checks weight bounds and the unit-sum invariant.
func (t AllocationTarget) Validate() error {
	for class, w := range t {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return fmt.Errorf("allocation weight for %s out of range: %v", class, w)
		}
	}
	if diff := math.Abs(t.Sum() - 1); diff > AllocationWeightTolerance {
		return fmt.Errorf("allocation weights sum to %v, want 1 within %v", t.Sum(), AllocationWeightTolerance)
	}
	return nil
}
