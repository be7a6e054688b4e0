package constants

// RuleDecision is the canonical outcome of a single policy rule check.
type RuleDecision string

// Stable values (these exact strings appear in reports).
const (
	DecisionPass                   RuleDecision = "Pass"
	DecisionReject                 RuleDecision = "Reject"
	DecisionDeduct                 RuleDecision = "Deduct"
	DecisionProportionateDeduction RuleDecision = "Proportionate Deduction"
	DecisionCapLimitApplied        RuleDecision = "Cap Limit Applied"
	DecisionNotEvaluated           RuleDecision = "Not Evaluated"
)

// IsDeduction reports whether the decision carries a deduction amount.
func (d RuleDecision) IsDeduction() bool {
	switch d {
	case DecisionDeduct, DecisionProportionateDeduction, DecisionCapLimitApplied:
		return true
	}
	return false
}

// RuleSection groups the eleven policy rules.
type RuleSection string

const (
	SectionPolicyValidity RuleSection = "Policy Validity"
	SectionPolicyLimits   RuleSection = "Policy Limits"
	SectionWaitingPeriods RuleSection = "Waiting Periods"
)

// RiskLevel is the claim risk tier derived from rule outcomes.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ClaimStatus summarizes the adjudication outcome.
type ClaimStatus string

const (
	StatusCleared               ClaimStatus = "CLEARED"
	StatusClearedWithDeductions ClaimStatus = "CLEARED WITH DEDUCTIONS"
	StatusRejected              ClaimStatus = "REJECTED"
)
