package rules

import (
	"fmt"

	"github.com/rajiviyer/medical-doc-extractor/constants"
	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

// riskDeductionRatio: deductions above this share of the base sum assured
// escalate an otherwise-payable claim to high risk.
const riskDeductionRatio = 0.20

// Aggregate folds eleven rule results into a single claim-level report.
// The policy data is needed again only for the base sum assured, which
// anchors the deduction-ratio risk check.
func Aggregate(policy PolicyData, results []RuleResult) ValidationReport {
	var (
		totalDeductions float64
		anyReject       bool
		anyNotEvaluated string
		confidenceSum   float64
		evaluated       int
	)

	for _, r := range results {
		totalDeductions += r.DeductionAmount
		switch r.Decision {
		case constants.DecisionReject:
			anyReject = true
		case constants.DecisionNotEvaluated:
			if anyNotEvaluated == "" {
				anyNotEvaluated = r.RuleName
			}
			continue
		}
		confidenceSum += r.ConfidenceScore
		evaluated++
	}

	report := ValidationReport{
		OverallValid:    !anyReject,
		TotalDeductions: totalDeductions,
		RuleResults:     results,
	}
	if evaluated > 0 {
		report.OverallConfidence = confidenceSum / float64(evaluated)
	}

	report.RiskLevel = riskLevel(policy, anyReject, totalDeductions)
	report.Status = claimStatus(anyReject, totalDeductions)
	report.Recommendations = recommendations(results)
	return report
}

func riskLevel(policy PolicyData, anyReject bool, totalDeductions float64) constants.RiskLevel {
	if anyReject {
		return constants.RiskHigh
	}
	if base, ok := validation.ExtractNumeric(policy[constants.FieldBaseSumAssured]); ok && base > 0 {
		if totalDeductions > base*riskDeductionRatio {
			return constants.RiskHigh
		}
	}
	if totalDeductions > 0 {
		return constants.RiskMedium
	}
	return constants.RiskLow
}

func claimStatus(anyReject bool, totalDeductions float64) constants.ClaimStatus {
	switch {
	case anyReject:
		return constants.StatusRejected
	case totalDeductions > 0:
		return constants.StatusClearedWithDeductions
	default:
		return constants.StatusCleared
	}
}

// recommendations lists one actionable line per rejection or deduction, in
// rule order and deduplicated. A fully clean run gets the single all-clear
// line.
func recommendations(results []RuleResult) []string {
	recs := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(s string) {
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		recs = append(recs, s)
	}

	for _, r := range results {
		switch {
		case r.Decision == constants.DecisionReject:
			add(fmt.Sprintf("%s rejected: %s", r.RuleName, r.Reasoning))
		case r.Decision.IsDeduction() && r.DeductionAmount > 0:
			add(fmt.Sprintf("%s deduction: %.2f", r.RuleName, r.DeductionAmount))
		case r.Decision == constants.DecisionNotEvaluated:
			add(fmt.Sprintf("early termination: %s", r.Reasoning))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "All policy rules validated successfully")
	}
	return recs
}
