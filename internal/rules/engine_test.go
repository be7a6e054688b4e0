package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Today = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testConfig())
	require.NoError(t, err)
	return e
}

func basePolicy() PolicyData {
	return PolicyData{
		constants.FieldBaseSumAssured: "500000",
		constants.FieldPolicyStatus:   "active",
		constants.FieldInceptionDate:  "01/01/2024",
	}
}

func baseClaim() ClaimData {
	return ClaimData{
		AdmissionDate: "15/07/2025",
		Condition:     "fever",
	}
}

func resultByName(t *testing.T, results []RuleResult, name string) RuleResult {
	t.Helper()
	for _, r := range results {
		if r.RuleName == name {
			return r
		}
	}
	t.Fatalf("rule %q not found in results", name)
	return RuleResult{}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DiseaseWaitingDays = nil
	_, err := NewEngine(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	cfg = testConfig()
	cfg.DiseaseWaitingDays = map[string]int{"diabetes": -1}
	_, err = NewEngine(cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))

	cfg = testConfig()
	cfg.InitialWaitingDays = 0
	_, err = NewEngine(cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestEvaluateAlwaysReturnsElevenResults(t *testing.T) {
	e := newTestEngine(t)

	results := e.Evaluate(basePolicy(), baseClaim())
	require.Len(t, results, 11)

	// Empty inputs still produce the full grid.
	results = e.Evaluate(PolicyData{}, ClaimData{})
	require.Len(t, results, 11)
}

func TestDiseaseWaitingPeriodRejection(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldInceptionDate] = "10/02/2025"
	claim := baseClaim()
	claim.AdmissionDate = "15/07/2025" // 155 days after inception
	claim.Condition = "cardiac arrest"

	results := e.Evaluate(policy, claim)
	require.Len(t, results, 11)

	disease := resultByName(t, results, "Disease Specific")
	assert.Equal(t, constants.DecisionReject, disease.Decision)
	assert.Contains(t, disease.Reasoning, "180")
	assert.Contains(t, disease.Reasoning, "155")

	report := Aggregate(policy, results)
	assert.False(t, report.OverallValid)
	assert.Equal(t, constants.RiskHigh, report.RiskLevel)
	assert.Equal(t, constants.StatusRejected, report.Status)
}

func TestCleanClaimPasses(t *testing.T) {
	e := newTestEngine(t)

	results := e.Evaluate(basePolicy(), baseClaim())
	for _, r := range results {
		assert.Equalf(t, constants.DecisionPass, r.Decision, "rule %s", r.RuleName)
		assert.Zerof(t, r.DeductionAmount, "rule %s", r.RuleName)
	}

	report := Aggregate(basePolicy(), results)
	assert.True(t, report.OverallValid)
	assert.Zero(t, report.TotalDeductions)
	assert.Equal(t, constants.RiskLow, report.RiskLevel)
	assert.Equal(t, constants.StatusCleared, report.Status)
	assert.Equal(t, []string{"All policy rules validated successfully"}, report.Recommendations)
}

func TestRoomRentProportionateDeduction(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldRoomRentCapping] = "2%"
	claim := baseClaim()
	claim.HospitalBill = map[string]float64{constants.BillRoomRent: 15000}

	results := e.Evaluate(policy, claim)
	rr := resultByName(t, results, "Room Rent Eligibility")
	assert.Equal(t, constants.DecisionProportionateDeduction, rr.Decision)
	// 2% of 500000 = 10000 entitled; 15000 billed.
	assert.InDelta(t, 5000, rr.DeductionAmount, 0.001)

	report := Aggregate(policy, results)
	assert.True(t, report.OverallValid)
	assert.InDelta(t, 5000, report.TotalDeductions, 0.001)
	assert.Equal(t, constants.RiskMedium, report.RiskLevel)
	assert.Equal(t, constants.StatusClearedWithDeductions, report.Status)
	assert.Contains(t, report.Recommendations, "Room Rent Eligibility deduction: 5000.00")
}

func TestRoomRentAtActualsIsUncapped(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldRoomRentCapping] = "At Actuals"
	claim := baseClaim()
	claim.HospitalBill = map[string]float64{constants.BillRoomRent: 90000}

	rr := resultByName(t, e.Evaluate(policy, claim), "Room Rent Eligibility")
	assert.Equal(t, constants.DecisionPass, rr.Decision)
	assert.Zero(t, rr.DeductionAmount)
}

func TestICUCappingDeduction(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldICUCapping] = "5%"
	claim := baseClaim()
	claim.HospitalBill = map[string]float64{constants.BillICUCharges: 40000}

	icu := resultByName(t, e.Evaluate(policy, claim), "ICU Capping")
	assert.Equal(t, constants.DecisionDeduct, icu.Decision)
	// 5% of 500000 = 25000 entitled; 40000 billed.
	assert.InDelta(t, 15000, icu.DeductionAmount, 0.001)
}

func TestCoPaymentDeduction(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldCoPayment] = "10%"
	claim := baseClaim()
	claim.ClaimAmount = 100000

	cp := resultByName(t, e.Evaluate(policy, claim), "Co-payment")
	assert.Equal(t, constants.DecisionDeduct, cp.Decision)
	assert.InDelta(t, 10000, cp.DeductionAmount, 0.001)
}

func TestCoPaymentZeroPasses(t *testing.T) {
	e := newTestEngine(t)

	for _, value := range []string{"", "0", "0%", "null"} {
		policy := basePolicy()
		if value != "" {
			policy[constants.FieldCoPayment] = value
		}
		cp := resultByName(t, e.Evaluate(policy, baseClaim()), "Co-payment")
		assert.Equalf(t, constants.DecisionPass, cp.Decision, "co_payment=%q", value)
		assert.Zerof(t, cp.DeductionAmount, "co_payment=%q", value)
	}
}

func TestSubLimitCapApplied(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldCataractCapping] = "40000"
	claim := baseClaim()
	claim.Procedure = "Cataract Surgery - Left Eye"
	claim.HospitalBill = map[string]float64{constants.BillProcedureCost: 55000}

	sl := resultByName(t, e.Evaluate(policy, claim), "Sub-limits")
	assert.Equal(t, constants.DecisionCapLimitApplied, sl.Decision)
	assert.InDelta(t, 15000, sl.DeductionAmount, 0.001)
}

func TestSubLimitAbsentCapPasses(t *testing.T) {
	e := newTestEngine(t)

	claim := baseClaim()
	claim.Procedure = "cataract"
	claim.HospitalBill = map[string]float64{constants.BillProcedureCost: 55000}

	sl := resultByName(t, e.Evaluate(basePolicy(), claim), "Sub-limits")
	assert.Equal(t, constants.DecisionPass, sl.Decision)
}

func TestDaycareRejectionDoesNotTerminate(t *testing.T) {
	e := newTestEngine(t)

	claim := baseClaim()
	claim.IsDaycare = true
	claim.Procedure = "experimental gene therapy"

	results := e.Evaluate(basePolicy(), claim)
	dc := resultByName(t, results, "Daycare")
	assert.Equal(t, constants.DecisionReject, dc.Decision)

	// Waiting-period rules after the daycare rejection are still evaluated.
	iw := resultByName(t, results, "Initial Waiting")
	assert.Equal(t, constants.DecisionPass, iw.Decision)
	nm := resultByName(t, results, "Non-Medical")
	assert.NotEqual(t, constants.DecisionNotEvaluated, nm.Decision)
}

func TestDaycareApprovedProcedurePasses(t *testing.T) {
	e := newTestEngine(t)

	claim := baseClaim()
	claim.IsDaycare = true
	claim.Procedure = "Colonoscopy with biopsy"

	dc := resultByName(t, e.Evaluate(basePolicy(), claim), "Daycare")
	assert.Equal(t, constants.DecisionPass, dc.Decision)
}

func TestInitialWaitingPeriod(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldInceptionDate] = "01/07/2025"
	claim := baseClaim()
	claim.AdmissionDate = "15/07/2025" // 14 days in

	iw := resultByName(t, e.Evaluate(policy, claim), "Initial Waiting")
	assert.Equal(t, constants.DecisionReject, iw.Decision)

	claim.IsAccident = true
	iw = resultByName(t, e.Evaluate(policy, claim), "Initial Waiting")
	assert.Equal(t, constants.DecisionPass, iw.Decision)
}

func TestMaternityWaitingPeriod(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldInceptionDate] = "01/01/2025"
	claim := baseClaim()
	claim.AdmissionDate = "15/07/2025" // 195 days, under 270
	claim.Condition = "cesarean delivery"

	mt := resultByName(t, e.Evaluate(policy, claim), "Maternity")
	assert.Equal(t, constants.DecisionReject, mt.Decision)

	policy[constants.FieldInceptionDate] = "01/01/2024"
	mt = resultByName(t, e.Evaluate(policy, claim), "Maternity")
	assert.Equal(t, constants.DecisionPass, mt.Decision)

	// Non-maternity conditions never trip the rule.
	claim.Condition = "appendicitis"
	policy[constants.FieldInceptionDate] = "01/06/2025"
	mt = resultByName(t, e.Evaluate(policy, claim), "Maternity")
	assert.Equal(t, constants.DecisionPass, mt.Decision)
}

func TestNonMedicalItemsDeducted(t *testing.T) {
	e := newTestEngine(t)

	claim := baseClaim()
	claim.ItemizedBill = map[string]float64{
		"room charges":         20000,
		"toiletries kit":       350,
		"attendant charges":    1200,
		"telephone usage":      150,
		"surgeon professional": 45000,
	}

	nm := resultByName(t, e.Evaluate(basePolicy(), claim), "Non-Medical")
	assert.Equal(t, constants.DecisionDeduct, nm.Decision)
	assert.InDelta(t, 1700, nm.DeductionAmount, 0.001)
}

func TestEarlyTerminationOnInceptionFailure(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldInceptionDate] = "10/02/2025"
	claim := baseClaim()
	claim.AdmissionDate = "15/01/2024" // before inception

	results := e.Evaluate(policy, claim)
	require.Len(t, results, 11)

	assert.Equal(t, constants.DecisionReject, results[0].Decision)
	assert.Equal(t, constants.DecisionPass, results[1].Decision)
	for _, r := range results[2:] {
		assert.Equalf(t, constants.DecisionNotEvaluated, r.Decision, "rule %s", r.RuleName)
		assert.Contains(t, r.Reasoning, "Inception Date")
	}

	report := Aggregate(policy, results)
	assert.False(t, report.OverallValid)
	assert.Equal(t, constants.StatusRejected, report.Status)
}

func TestLapsedPolicyRejected(t *testing.T) {
	e := newTestEngine(t)

	for _, status := range []string{"lapsed", "grace", "Lapsed"} {
		policy := basePolicy()
		policy[constants.FieldPolicyStatus] = status

		results := e.Evaluate(policy, baseClaim())
		require.Len(t, results, 11)
		assert.Equal(t, constants.DecisionReject, results[1].Decision)
		assert.Equal(t, constants.DecisionNotEvaluated, results[2].Decision)
	}
}

func TestLapseGracePeriodOverdue(t *testing.T) {
	e := newTestEngine(t) // Today pinned to 2025-08-01

	policy := basePolicy()
	policy[constants.FieldLastPaymentDate] = "01/05/2025"
	policy[constants.FieldGracePeriod] = "30"

	// 92 days since payment minus 30 days grace: 62 days overdue.
	lc := resultByName(t, e.Evaluate(policy, baseClaim()), "Lapse Check")
	assert.Equal(t, constants.DecisionReject, lc.Decision)
	assert.Contains(t, lc.Reasoning, "62")

	policy[constants.FieldLastPaymentDate] = "15/07/2025"
	lc = resultByName(t, e.Evaluate(policy, baseClaim()), "Lapse Check")
	assert.Equal(t, constants.DecisionPass, lc.Decision)
}

func TestMissingDatesFailClosed(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	delete(policy, constants.FieldInceptionDate)

	results := e.Evaluate(policy, baseClaim())
	assert.Equal(t, constants.DecisionReject, results[0].Decision)

	policy = basePolicy()
	policy[constants.FieldInceptionDate] = "31/02/2024"
	results = e.Evaluate(policy, baseClaim())
	assert.Equal(t, constants.DecisionReject, results[0].Decision)
}

func TestPolicyStartDateFallback(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	delete(policy, constants.FieldInceptionDate)
	policy[constants.FieldPolicyStartDate] = "01/01/2024"

	results := e.Evaluate(policy, baseClaim())
	assert.Equal(t, constants.DecisionPass, results[0].Decision)
}

func TestDeductionSumInvariant(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldRoomRentCapping] = "1%"
	policy[constants.FieldCoPayment] = "20%"
	claim := baseClaim()
	claim.ClaimAmount = 200000
	claim.HospitalBill = map[string]float64{constants.BillRoomRent: 12000}
	claim.ItemizedBill = map[string]float64{"food delivery": 800}

	results := e.Evaluate(policy, claim)
	var sum float64
	for _, r := range results {
		if r.DeductionAmount > 0 {
			assert.Truef(t, r.Decision.IsDeduction(), "rule %s has deduction amount without deduction decision", r.RuleName)
		}
		sum += r.DeductionAmount
	}

	report := Aggregate(policy, results)
	assert.InDelta(t, sum, report.TotalDeductions, 0.001)
	// 7000 + 40000 + 800 = 47800, under 20% of the 500000 base.
	assert.Equal(t, constants.RiskMedium, report.RiskLevel)
}

func TestHighRiskFromLargeDeductions(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldCoPayment] = "30%"
	claim := baseClaim()
	claim.ClaimAmount = 400000

	results := e.Evaluate(policy, claim)
	report := Aggregate(policy, results)
	// 120000 deducted > 20% of 500000 base.
	assert.True(t, report.OverallValid)
	assert.Equal(t, constants.RiskHigh, report.RiskLevel)
	assert.Equal(t, constants.StatusClearedWithDeductions, report.Status)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldRoomRentCapping] = "2%"
	policy[constants.FieldCoPayment] = "10%"
	claim := baseClaim()
	claim.ClaimAmount = 100000
	claim.HospitalBill = map[string]float64{constants.BillRoomRent: 15000}
	claim.ItemizedBill = map[string]float64{"food": 500, "toiletries kit": 200}

	first := Aggregate(policy, e.Evaluate(policy, claim))
	second := Aggregate(policy, e.Evaluate(policy, claim))
	assert.Equal(t, first, second)
}

func TestOverallConfidenceExcludesNotEvaluated(t *testing.T) {
	e := newTestEngine(t)

	policy := basePolicy()
	policy[constants.FieldPolicyStatus] = "lapsed"

	results := e.Evaluate(policy, baseClaim())
	report := Aggregate(policy, results)
	// Only the two validity rules were evaluated (0.9 pass + 0.8 reject).
	assert.InDelta(t, 0.85, report.OverallConfidence, 0.001)
}
