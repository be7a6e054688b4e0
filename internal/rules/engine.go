package rules

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rajiviyer/medical-doc-extractor/constants"
	"github.com/rajiviyer/medical-doc-extractor/internal/dates"
	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

// Heuristic rule confidences, carried over from the pipeline's original
// calibration.
const (
	confHigh    = 0.9
	confMedium  = 0.8
	confOverdue = 0.7
	confLow     = 0.3
)

// ruleMeta is the static description of one rule: its report section, the
// human-readable criteria, and the documents that evidence it.
type ruleMeta struct {
	name      string
	section   constants.RuleSection
	criteria  string
	documents string
}

// ruleOrder fixes both evaluation and report order: Validity, then Limits,
// then Waiting Periods.
var ruleOrder = []ruleMeta{
	{"Inception Date", constants.SectionPolicyValidity, "Policy must be active on date of admission", "Policy Master Document, Policy Document"},
	{"Lapse Check", constants.SectionPolicyValidity, "Policy should not be in grace/lapse", "Policy Master Document, Policy Document, Payment Receipt"},
	{"Room Rent Eligibility", constants.SectionPolicyLimits, "Room rent within entitled limit", "Policy Master Document, Policy Document, Hospital Bill"},
	{"ICU Capping", constants.SectionPolicyLimits, "ICU charges within cap", "Policy Master Document, Policy Document, Hospital Bill"},
	{"Co-payment", constants.SectionPolicyLimits, "Co-pay % as per policy", "Policy Master Document, Policy Document"},
	{"Sub-limits", constants.SectionPolicyLimits, "Procedure under cap limit", "Policy Master Document, Policy Document, Hospital Bill"},
	{"Daycare", constants.SectionPolicyLimits, "Within IRDA-approved daycare", "Policy Master Document, Policy Document, Discharge Summary"},
	{"Initial Waiting", constants.SectionWaitingPeriods, "30 days initial waiting for non-accident", "Policy Master Document, Policy Document"},
	{"Disease Specific", constants.SectionWaitingPeriods, "Condition covered post waiting period", "Policy Master Document, Policy Document"},
	{"Maternity", constants.SectionWaitingPeriods, "Covered with waiting period", "Policy Master Document, Policy Document"},
	{"Non-Medical", constants.SectionWaitingPeriods, "IRDA non-payables", "Policy Master Document, Policy Document, Hospital Bill, Itemized Bill"},
}

// Engine evaluates the eleven adjudication rules against one policy/claim
// pair. Construct once, share freely: evaluation touches no mutable state.
type Engine struct {
	cfg Config
}

// NewEngine validates the static tables and returns a ready engine. A bad
// table is the only fatal condition in this package.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Today.IsZero() {
		cfg.Today = time.Now().UTC()
	}
	return &Engine{cfg: cfg}, nil
}

// evalState carries the dates rule 1 resolved, so the waiting-period rules
// reuse them instead of re-parsing.
type evalState struct {
	policyStart time.Time
	admission   time.Time
	datesOK     bool
}

// Evaluate runs all eleven rules in section order and always returns eleven
// results. If a Policy Validity rule rejects, the remaining nine are
// recorded as Not Evaluated: a void policy makes limit and waiting checks
// moot.
func (e *Engine) Evaluate(policy PolicyData, claim ClaimData) []RuleResult {
	results := make([]RuleResult, 0, len(ruleOrder))
	var state evalState

	results = append(results, e.checkInceptionDate(policy, claim, &state))
	results = append(results, e.checkLapse(policy))

	for _, r := range results {
		if r.Decision == constants.DecisionReject {
			return fillNotEvaluated(results, r.RuleName)
		}
	}

	results = append(results,
		e.checkRoomRent(policy, claim),
		e.checkICUCapping(policy, claim),
		e.checkCoPayment(policy, claim),
		e.checkSubLimits(policy, claim),
		e.checkDaycare(claim),
		e.checkInitialWaiting(claim, state),
		e.checkDiseaseWaiting(claim, state),
		e.checkMaternityWaiting(claim, state),
		e.checkNonMedicalItems(claim),
	)
	return results
}

// fillNotEvaluated pads the result list to all eleven rules, marking the
// remainder as short-circuited by the named validity failure.
func fillNotEvaluated(results []RuleResult, failedRule string) []RuleResult {
	for i := len(results); i < len(ruleOrder); i++ {
		meta := ruleOrder[i]
		results = append(results, RuleResult{
			RuleName:         meta.name,
			Section:          meta.section,
			Criteria:         meta.criteria,
			Decision:         constants.DecisionNotEvaluated,
			Reasoning:        fmt.Sprintf("not evaluated: terminated early after %s failed", failedRule),
			DocumentRequired: meta.documents,
		})
	}
	return results
}

func (e *Engine) result(idx int, decision constants.RuleDecision, confidence float64, reasoning string) RuleResult {
	meta := ruleOrder[idx]
	return RuleResult{
		RuleName:         meta.name,
		Section:          meta.section,
		Criteria:         meta.criteria,
		Decision:         decision,
		Reasoning:        reasoning,
		DocumentRequired: meta.documents,
		ConfidenceScore:  confidence,
	}
}

func (e *Engine) deduction(idx int, decision constants.RuleDecision, confidence float64, amount float64, reasoning string) RuleResult {
	r := e.result(idx, decision, confidence, reasoning)
	r.DeductionAmount = amount
	return r
}

// Rule 1: the policy must be in force on the admission date. Either date
// failing to resolve rejects the claim (fail-closed).
func (e *Engine) checkInceptionDate(policy PolicyData, claim ClaimData, state *evalState) RuleResult {
	startRaw, ok := policy.Lookup(constants.FieldInceptionDate, constants.FieldPolicyStartDate)
	if !ok {
		return e.result(0, constants.DecisionReject, confLow, "inception date not found in policy data")
	}

	start, err := dates.Parse(startRaw)
	if err != nil {
		return e.result(0, constants.DecisionReject, confLow, fmt.Sprintf("invalid inception date: %v", err))
	}

	if claim.AdmissionDate == "" {
		return e.result(0, constants.DecisionReject, confLow, "admission date not found in claim data")
	}
	admission, err := dates.Parse(claim.AdmissionDate)
	if err != nil {
		return e.result(0, constants.DecisionReject, confLow, fmt.Sprintf("invalid admission date: %v", err))
	}

	state.policyStart = start
	state.admission = admission
	state.datesOK = true

	if admission.Before(start) {
		return e.result(0, constants.DecisionReject, confHigh,
			fmt.Sprintf("policy not active on admission date: inception %s, admission %s", startRaw, claim.AdmissionDate))
	}
	return e.result(0, constants.DecisionPass, confHigh,
		fmt.Sprintf("policy active from %s, admission on %s", startRaw, claim.AdmissionDate))
}

// Rule 2: the policy must not be lapsed or in its grace period. A missing
// status field means active.
func (e *Engine) checkLapse(policy PolicyData) RuleResult {
	status := strings.ToLower(strings.TrimSpace(policy[constants.FieldPolicyStatus]))
	if status == "lapsed" || status == "grace" {
		return e.result(1, constants.DecisionReject, confMedium, fmt.Sprintf("policy status: %s", status))
	}

	if lastPaymentRaw, ok := policy[constants.FieldLastPaymentDate]; ok && lastPaymentRaw != "" {
		lastPayment, err := dates.Parse(lastPaymentRaw)
		if err != nil {
			return e.result(1, constants.DecisionReject, confLow, fmt.Sprintf("invalid last payment date: %v", err))
		}
		var grace float64
		if v, ok := policy[constants.FieldGracePeriod]; ok {
			grace, _ = validation.ExtractNumeric(v)
		}
		overdue := dates.DaysBetween(lastPayment, e.cfg.Today) - int(grace)
		if overdue > 0 {
			return e.result(1, constants.DecisionReject, confOverdue, fmt.Sprintf("payment overdue by %d days", overdue))
		}
	}

	return e.result(1, constants.DecisionPass, confMedium, "policy is active and not in grace/lapse period")
}

// Rule 3: room rent within the entitled limit; overage is a linear
// proportionate deduction, not a full-bill rejection.
func (e *Engine) checkRoomRent(policy PolicyData, claim ClaimData) RuleResult {
	actual := claim.HospitalBill[constants.BillRoomRent]
	limit, unlimited, reason, ok := e.resolvePercentageCap(policy, constants.FieldRoomRentCapping, actual)
	if !ok {
		return e.result(2, constants.DecisionReject, confLow, reason)
	}
	if unlimited {
		return e.result(2, constants.DecisionPass, reasonConfidence(reason), reason)
	}
	if actual <= limit {
		return e.result(2, constants.DecisionPass, confHigh, fmt.Sprintf("room rent %.2f within limit %.2f", actual, limit))
	}
	return e.deduction(2, constants.DecisionProportionateDeduction, confHigh, actual-limit,
		fmt.Sprintf("room rent %.2f exceeds limit %.2f", actual, limit))
}

// Rule 4: ICU charges within cap; overage is deducted.
func (e *Engine) checkICUCapping(policy PolicyData, claim ClaimData) RuleResult {
	actual := claim.HospitalBill[constants.BillICUCharges]
	limit, unlimited, reason, ok := e.resolvePercentageCap(policy, constants.FieldICUCapping, actual)
	if !ok {
		return e.result(3, constants.DecisionReject, confLow, reason)
	}
	if unlimited {
		return e.result(3, constants.DecisionPass, reasonConfidence(reason), reason)
	}
	if actual <= limit {
		return e.result(3, constants.DecisionPass, confHigh, fmt.Sprintf("ICU charges %.2f within limit %.2f", actual, limit))
	}
	return e.deduction(3, constants.DecisionDeduct, confHigh, actual-limit,
		fmt.Sprintf("ICU charges %.2f exceed limit %.2f", actual, limit))
}

// resolvePercentageCap turns a capping field into an absolute limit.
// "at actuals" (or an absent cap) means unlimited; a percentage is applied
// to the base sum assured.
func (e *Engine) resolvePercentageCap(policy PolicyData, field string, actual float64) (limit float64, unlimited bool, reason string, ok bool) {
	capRaw, present := policy[field]
	if !present || strings.TrimSpace(capRaw) == "" || strings.TrimSpace(capRaw) == "0" {
		return 0, true, fmt.Sprintf("no %s applied", field), true
	}
	if strings.Contains(strings.ToLower(capRaw), "actual") {
		return 0, true, fmt.Sprintf("%s is at actuals (uncapped)", field), true
	}

	pct, isPct := validation.ExtractPercent(capRaw)
	if !isPct {
		pct, isPct = validation.ExtractNumeric(capRaw)
	}
	if !isPct {
		return 0, false, fmt.Sprintf("could not parse %s value %q", field, capRaw), false
	}

	baseRaw, present := policy[constants.FieldBaseSumAssured]
	if !present {
		return 0, false, "base sum assured not found in policy data", false
	}
	base, okBase := validation.ExtractNumeric(baseRaw)
	if !okBase {
		return 0, false, fmt.Sprintf("could not parse base sum assured %q", baseRaw), false
	}

	return base * pct / 100, false, "", true
}

// reasonConfidence: an absent cap passes at medium confidence, an explicit
// "at actuals" at high.
func reasonConfidence(reason string) float64 {
	if strings.Contains(reason, "uncapped") {
		return confHigh
	}
	return confMedium
}

// Rule 5: co-payment always applies when a percentage is set; the insured's
// share of the claim amount is deducted.
func (e *Engine) checkCoPayment(policy PolicyData, claim ClaimData) RuleResult {
	raw, ok := policy[constants.FieldCoPayment]
	trimmed := strings.TrimSpace(raw)
	if !ok || trimmed == "" || trimmed == "0" || strings.EqualFold(trimmed, "null") {
		return e.result(4, constants.DecisionPass, confHigh, "no co-payment applicable")
	}

	pct, isPct := validation.ExtractPercent(trimmed)
	if !isPct {
		pct, isPct = validation.ExtractNumeric(trimmed)
	}
	if !isPct {
		return e.result(4, constants.DecisionReject, confLow, fmt.Sprintf("could not parse co-payment value %q", raw))
	}
	if pct == 0 {
		return e.result(4, constants.DecisionPass, confHigh, "co-payment is 0%")
	}

	deduction := claim.TotalBilled() * pct / 100
	return e.deduction(4, constants.DecisionDeduct, confHigh, deduction,
		fmt.Sprintf("co-payment %g%% applied", pct))
}

// Rule 6: per-procedure sub-limits (cataract, hernia, ...), matched by
// keyword against the claimed procedure.
func (e *Engine) checkSubLimits(policy PolicyData, claim ClaimData) RuleResult {
	procedure := strings.ToLower(claim.Procedure)
	cost := claim.HospitalBill[constants.BillProcedureCost]

	// Sorted iteration keeps match selection deterministic.
	keys := make([]string, 0, len(e.cfg.ProcedureCaps))
	for k := range e.cfg.ProcedureCaps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var capField string
	for _, k := range keys {
		if procedure != "" && strings.Contains(procedure, k) {
			capField = e.cfg.ProcedureCaps[k]
			break
		}
	}
	if capField == "" {
		return e.result(5, constants.DecisionPass, confMedium, "no specific sub-limit for this procedure")
	}

	capRaw, ok := policy[capField]
	if !ok || strings.TrimSpace(capRaw) == "" {
		return e.result(5, constants.DecisionPass, confMedium, fmt.Sprintf("no %s set in policy", capField))
	}

	var capAmount float64
	if pct, isPct := validation.ExtractPercent(capRaw); isPct {
		base, okBase := validation.ExtractNumeric(policy[constants.FieldBaseSumAssured])
		if !okBase {
			return e.result(5, constants.DecisionReject, confLow, "base sum assured needed for percentage sub-limit but not parseable")
		}
		capAmount = base * pct / 100
	} else if amount, isNum := validation.ExtractNumeric(capRaw); isNum {
		capAmount = amount
	} else {
		return e.result(5, constants.DecisionReject, confLow, fmt.Sprintf("could not parse %s value %q", capField, capRaw))
	}

	if cost <= capAmount {
		return e.result(5, constants.DecisionPass, confHigh, fmt.Sprintf("procedure cost %.2f within cap %.2f", cost, capAmount))
	}
	return e.deduction(5, constants.DecisionCapLimitApplied, confHigh, cost-capAmount,
		fmt.Sprintf("procedure cost %.2f exceeds cap %.2f", cost, capAmount))
}

// Rule 7: a daycare claim must name an IRDA-approved procedure.
func (e *Engine) checkDaycare(claim ClaimData) RuleResult {
	if !claim.IsDaycare {
		return e.result(6, constants.DecisionPass, confHigh, "not a daycare procedure")
	}
	procedure := strings.ToLower(claim.Procedure)
	for _, approved := range e.cfg.DaycareProcedures {
		if strings.Contains(procedure, approved) {
			return e.result(6, constants.DecisionPass, confHigh,
				fmt.Sprintf("daycare procedure %q is IRDA approved", claim.Procedure))
		}
	}
	return e.result(6, constants.DecisionReject, confMedium,
		fmt.Sprintf("daycare procedure %q not in IRDA approved list", claim.Procedure))
}

// Rule 8: 30-day initial waiting period; accident claims bypass it.
// Dates were already resolved by rule 1.
func (e *Engine) checkInitialWaiting(claim ClaimData, state evalState) RuleResult {
	if claim.IsAccident {
		return e.result(7, constants.DecisionPass, confHigh, "accident claim: initial waiting period waived")
	}
	if !state.datesOK {
		return e.result(7, constants.DecisionReject, confLow, "policy start or admission date unavailable")
	}
	days := dates.DaysBetween(state.policyStart, state.admission)
	if days < e.cfg.InitialWaitingDays {
		return e.result(7, constants.DecisionReject, confHigh,
			fmt.Sprintf("policy only %d days old, requires %d days", days, e.cfg.InitialWaitingDays))
	}
	return e.result(7, constants.DecisionPass, confHigh,
		fmt.Sprintf("policy %d days old, exceeds %d-day requirement", days, e.cfg.InitialWaitingDays))
}

// Rule 9: disease-specific waiting period from the condition table.
// Conditions not in the table have no known waiting requirement and pass.
// When several table entries match the free-text condition, the longest
// waiting period wins.
func (e *Engine) checkDiseaseWaiting(claim ClaimData, state evalState) RuleResult {
	condition := strings.ToLower(claim.Condition)

	matched := ""
	required := -1
	keys := make([]string, 0, len(e.cfg.DiseaseWaitingDays))
	for k := range e.cfg.DiseaseWaitingDays {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, disease := range keys {
		if condition != "" && strings.Contains(condition, disease) {
			if days := e.cfg.DiseaseWaitingDays[disease]; days > required {
				matched, required = disease, days
			}
		}
	}
	if matched == "" {
		return e.result(8, constants.DecisionPass, confMedium, "no disease-specific waiting period for this condition")
	}

	if !state.datesOK {
		return e.result(8, constants.DecisionReject, confLow, "policy start or admission date unavailable")
	}
	days := dates.DaysBetween(state.policyStart, state.admission)
	if days < required {
		return e.result(8, constants.DecisionReject, confHigh,
			fmt.Sprintf("%s condition requires %d days, policy only %d days old", matched, required, days))
	}
	return e.result(8, constants.DecisionPass, confHigh,
		fmt.Sprintf("%s condition waiting period satisfied (%d >= %d days)", matched, days, required))
}

// Rule 10: maternity waiting period, evaluated only for maternity-related
// conditions.
func (e *Engine) checkMaternityWaiting(claim ClaimData, state evalState) RuleResult {
	condition := strings.ToLower(claim.Condition)
	maternity := false
	for _, keyword := range e.cfg.MaternityConditions {
		if strings.Contains(condition, keyword) {
			maternity = true
			break
		}
	}
	if !maternity {
		return e.result(9, constants.DecisionPass, confHigh, "not a maternity-related condition")
	}

	if !state.datesOK {
		return e.result(9, constants.DecisionReject, confLow, "policy start or admission date unavailable")
	}
	days := dates.DaysBetween(state.policyStart, state.admission)
	if days < e.cfg.MaternityWaitingDays {
		return e.result(9, constants.DecisionReject, confHigh,
			fmt.Sprintf("maternity condition requires %d days, policy only %d days old", e.cfg.MaternityWaitingDays, days))
	}
	return e.result(9, constants.DecisionPass, confHigh, "maternity waiting period satisfied")
}

// Rule 11: IRDA non-payable items in the itemized bill are deducted in full.
func (e *Engine) checkNonMedicalItems(claim ClaimData) RuleResult {
	var total float64
	items := make([]string, 0, len(claim.ItemizedBill))
	for item := range claim.ItemizedBill {
		items = append(items, item)
	}
	sort.Strings(items)
	for _, item := range items {
		lower := strings.ToLower(item)
		for _, nonPayable := range e.cfg.NonPayableItems {
			if strings.Contains(lower, nonPayable) {
				total += claim.ItemizedBill[item]
				break
			}
		}
	}

	if total == 0 {
		return e.result(10, constants.DecisionPass, confHigh, "no non-medical items found in bill")
	}
	return e.deduction(10, constants.DecisionDeduct, confMedium, total,
		fmt.Sprintf("non-medical items totaling %.2f found", total))
}
