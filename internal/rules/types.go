// Package rules evaluates claim adjudication rules over extracted policy
// data. The engine is a pure function of its inputs: no I/O, no shared
// mutable state, safe to run concurrently across documents.
package rules

import (
	"github.com/rajiviyer/medical-doc-extractor/constants"
)

// PolicyData maps recognized field names to their extracted string values.
// Null/empty extractions are dropped during sanitization, so a missing key
// is the only representation of "not found".
type PolicyData map[string]string

// Lookup returns the first non-empty value among the given field names.
// Used for field-name migrations (inception_date vs policy_start_date):
// accepted names live in one ordered list instead of duplicated branches.
func (p PolicyData) Lookup(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := p[name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// ClaimData carries the claim-side inputs for one evaluation.
type ClaimData struct {
	AdmissionDate string             `json:"admission_date"`
	Condition     string             `json:"condition"`
	ClaimAmount   float64            `json:"claim_amount,omitempty"`
	Procedure     string             `json:"procedure,omitempty"`
	IsAccident    bool               `json:"is_accident,omitempty"`
	IsDaycare     bool               `json:"is_daycare,omitempty"`
	HospitalBill  map[string]float64 `json:"hospital_bill,omitempty"`
	ItemizedBill  map[string]float64 `json:"itemized_bill,omitempty"`
}

// TotalBilled sums the hospital bill lines. Used as the co-payment base
// when no explicit claim amount is supplied.
func (c ClaimData) TotalBilled() float64 {
	if c.ClaimAmount > 0 {
		return c.ClaimAmount
	}
	var total float64
	for _, amount := range c.HospitalBill {
		total += amount
	}
	return total
}

// RuleResult is the outcome of one rule check. DeductionAmount is non-zero
// only when the decision is a deduction-type decision.
type RuleResult struct {
	RuleName         string                 `json:"rule_name"`
	Section          constants.RuleSection  `json:"section"`
	Criteria         string                 `json:"criteria"`
	Decision         constants.RuleDecision `json:"decision"`
	DeductionAmount  float64                `json:"deduction_amount"`
	Reasoning        string                 `json:"reasoning"`
	DocumentRequired string                 `json:"document_required"`
	ConfidenceScore  float64                `json:"confidence_score"`
}

// ValidationReport aggregates all eleven rule results for one claim.
// RuleResults always holds all eleven entries in section order, even when
// evaluation terminated early (short-circuited rules carry Not Evaluated).
type ValidationReport struct {
	OverallValid      bool                  `json:"overall_valid"`
	OverallConfidence float64               `json:"overall_confidence"`
	RiskLevel         constants.RiskLevel   `json:"risk_level"`
	Status            constants.ClaimStatus `json:"status"`
	TotalDeductions   float64               `json:"total_deductions"`
	RuleResults       []RuleResult          `json:"rule_results"`
	Recommendations   []string              `json:"recommendations"`
}
