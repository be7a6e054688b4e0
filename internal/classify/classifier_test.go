package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

func TestClassifyByFilenameOnly(t *testing.T) {
	r := Classify("mediclaim_policy_2024.pdf", "", nil)
	assert.Equal(t, constants.HealthInsurance, r.DocType)
	assert.Equal(t, constants.CategoryPolicy, r.Category)
	assert.Equal(t, 1.0, r.ConfidenceScore)
}

func TestClassifyByContent(t *testing.T) {
	content := "This mediclaim health insurance policy covers hospitalization " +
		"with room rent and ICU limits against the sum assured."
	r := Classify("scan_0001.pdf", content, nil)
	assert.Equal(t, constants.HealthInsurance, r.DocType)
	assert.Equal(t, constants.CategoryPolicy, r.Category)
}

func TestClassifyAgreementRaisesConfidence(t *testing.T) {
	content := "hospital bill with itemized bill and cost breakdown of charges"
	r := Classify("hospital_bill_march.pdf", content, nil)
	assert.Equal(t, constants.HospitalBill, r.DocType)
	assert.Equal(t, constants.CategoryClaim, r.Category)
	assert.Equal(t, 1.0, r.ConfidenceScore)
}

func TestClassifyConflictLowersConfidence(t *testing.T) {
	// Filename says bill, content says health policy: partial agreement.
	content := "health insurance policy, sum assured, room rent, co-payment"
	r := Classify("invoice_123.pdf", content, nil)
	assert.InDelta(t, 0.5, r.ConfidenceScore, 0.001)
}

func TestClassifyMetadataHint(t *testing.T) {
	r := Classify("", "", map[string]string{"document_type": "master policy wordings"})
	assert.Equal(t, constants.MasterPolicy, r.DocType)

	r = Classify("", "", map[string]string{"policy_type": "health floater"})
	assert.Equal(t, constants.HealthInsurance, r.DocType)

	r = Classify("", "", map[string]string{"policy_type": "term life"})
	assert.Equal(t, constants.LifeInsurance, r.DocType)
}

func TestClassifyNoSignalFallsBack(t *testing.T) {
	r := Classify("x.pdf", "", nil)
	assert.Equal(t, constants.OtherDocument, r.DocType)
	assert.Equal(t, constants.CategoryAdministrative, r.Category)
	assert.Zero(t, r.ConfidenceScore)
	assert.False(t, Usable(r))
}

func TestPolicyNumberExtraction(t *testing.T) {
	r := Classify("POL-2024-123456_mediclaim.pdf", "", nil)
	assert.Equal(t, "2024-123456", r.PolicyNumber)

	r = Classify("mediclaim.pdf", "Policy No: 2023-654321 issued to member", nil)
	assert.Equal(t, "2023-654321", r.PolicyNumber)
}

func TestPolicyVersionExtraction(t *testing.T) {
	r := Classify("mediclaim_policy_v2.1.pdf", "", nil)
	assert.Equal(t, "2.1", r.PolicyVersion)
}

func TestProcessorRouting(t *testing.T) {
	assert.Equal(t, "health_policy_processor", Processor(constants.HealthInsurance))
	assert.Equal(t, "claim_processor", Processor(constants.ClaimDocument))
	assert.Equal(t, "general_processor", Processor(constants.OtherDocument))
}

func TestUsable(t *testing.T) {
	ok := Result{DocType: constants.HealthInsurance, Category: constants.CategoryPolicy, ConfidenceScore: 0.9}
	assert.True(t, Usable(ok))

	lowConf := ok
	lowConf.ConfidenceScore = 0.2
	assert.False(t, Usable(lowConf))

	other := ok
	other.DocType = constants.OtherDocument
	assert.False(t, Usable(other))
}
