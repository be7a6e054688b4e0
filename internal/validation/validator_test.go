package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

func TestValidateFieldCurrency(t *testing.T) {
	spec := DefaultFieldSpecs()[constants.FieldBaseSumAssured]

	r := ValidateField(constants.FieldBaseSumAssured, "500000", true, spec)
	assert.True(t, r.IsValid)
	assert.Equal(t, ConfidenceValid, r.ConfidenceScore)

	// Currency symbols and Indian comma grouping are tolerated.
	r = ValidateField(constants.FieldBaseSumAssured, "₹ 5,00,000", true, spec)
	assert.True(t, r.IsValid)

	r = ValidateField(constants.FieldBaseSumAssured, "5000", true, spec)
	assert.False(t, r.IsValid, "below minimum")
	assert.Equal(t, ConfidenceInvalid, r.ConfidenceScore)

	r = ValidateField(constants.FieldBaseSumAssured, "99999999", true, spec)
	assert.False(t, r.IsValid, "above maximum")

	r = ValidateField(constants.FieldBaseSumAssured, "not a number", true, spec)
	assert.False(t, r.IsValid)
	assert.Equal(t, ConfidenceInvalid, r.ConfidenceScore)
}

func TestValidateFieldMissing(t *testing.T) {
	specs := DefaultFieldSpecs()

	r := ValidateField(constants.FieldBaseSumAssured, "", false, specs[constants.FieldBaseSumAssured])
	assert.False(t, r.IsValid)
	assert.Equal(t, ConfidenceMissing, r.ConfidenceScore)
	require.NotEmpty(t, r.ValidationMessages)
	assert.Contains(t, r.ValidationMessages[0], "required")

	// Optional field absent is fine.
	r = ValidateField(constants.FieldCoPayment, "", false, specs[constants.FieldCoPayment])
	assert.True(t, r.IsValid)
	assert.Equal(t, ConfidenceOptionalEmpty, r.ConfidenceScore)

	// The literal "null" is the same as absent.
	r = ValidateField(constants.FieldCoPayment, "null", true, specs[constants.FieldCoPayment])
	assert.True(t, r.IsValid)
	assert.Equal(t, ConfidenceOptionalEmpty, r.ConfidenceScore)
}

func TestValidateFieldPercentageLiterals(t *testing.T) {
	spec := DefaultFieldSpecs()[constants.FieldRoomRentCapping]

	for _, v := range []string{"At Actuals", "actuals", "ACTUAL"} {
		r := ValidateField(constants.FieldRoomRentCapping, v, true, spec)
		assert.Truef(t, r.IsValid, "literal %q", v)
	}

	r := ValidateField(constants.FieldRoomRentCapping, "2%", true, spec)
	assert.True(t, r.IsValid)

	// Bare number on a percentage field is read as a percentage.
	r = ValidateField(constants.FieldRoomRentCapping, "2", true, spec)
	assert.True(t, r.IsValid)

	r = ValidateField(constants.FieldRoomRentCapping, "150%", true, spec)
	assert.False(t, r.IsValid)
}

func TestValidateFieldAmountOrPercent(t *testing.T) {
	spec := DefaultFieldSpecs()[constants.FieldCataractCapping]

	// With a percent marker the percentage bounds apply.
	r := ValidateField(constants.FieldCataractCapping, "10%", true, spec)
	assert.True(t, r.IsValid)

	// Without a marker it is an amount bounded by the field max.
	r = ValidateField(constants.FieldCataractCapping, "40000", true, spec)
	assert.True(t, r.IsValid)

	r = ValidateField(constants.FieldCataractCapping, "250000", true, spec)
	assert.False(t, r.IsValid)
}

func TestValidateFieldDate(t *testing.T) {
	spec := DefaultFieldSpecs()[constants.FieldPolicyStartDate]

	r := ValidateField(constants.FieldPolicyStartDate, "15/07/2025", true, spec)
	assert.True(t, r.IsValid)
	assert.Equal(t, "2025-07-15", r.SuggestedValue)

	r = ValidateField(constants.FieldPolicyStartDate, "31/02/2025", true, spec)
	assert.False(t, r.IsValid)
	assert.Empty(t, r.SuggestedValue)
}

func TestValidateFieldLiteralSet(t *testing.T) {
	spec := DefaultFieldSpecs()[constants.FieldPolicyStatus]

	r := ValidateField(constants.FieldPolicyStatus, "Active", true, spec)
	assert.True(t, r.IsValid)

	r = ValidateField(constants.FieldPolicyStatus, "cancelled", true, spec)
	assert.False(t, r.IsValid)
	require.NotEmpty(t, r.ValidationMessages)
	assert.Contains(t, r.ValidationMessages[0], "active, lapsed, grace")
}

func TestValidateAll(t *testing.T) {
	specs := DefaultFieldSpecs()
	data := map[string]string{
		constants.FieldBaseSumAssured:  "500000",
		constants.FieldRoomRentCapping: "2%",
		"mystery_field":                "whatever",
	}

	results := ValidateAll(data, specs)

	assert.True(t, results[constants.FieldBaseSumAssured].IsValid)
	assert.True(t, results[constants.FieldRoomRentCapping].IsValid)

	// Unknown fields pass with reduced confidence.
	unknown := results["mystery_field"]
	assert.True(t, unknown.IsValid)
	assert.Equal(t, ConfidenceMissing, unknown.ConfidenceScore)

	// Required-but-absent fields are reported even without a data entry.
	icu, present := results[constants.FieldICUCapping]
	require.True(t, present)
	assert.False(t, icu.IsValid)
	assert.Equal(t, ConfidenceMissing, icu.ConfidenceScore)
}

func TestExtractNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"500000", 500000, true},
		{"₹5,00,000", 500000, true},
		{"$1,234.56", 1234.56, true},
		{"Rs. 25000 per claim", 25000, true},
		{"at actuals", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ExtractNumeric(tc.in)
		assert.Equalf(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDeltaf(t, tc.want, got, 0.001, "input %q", tc.in)
		}
	}
}

func TestExtractPercent(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2%", 2, true},
		{"2.5 %", 2.5, true},
		{"10 percent", 10, true},
		{"10 per cent of SI", 10, true},
		{"10", 0, false}, // no marker, not a percentage
		{"at actuals", 0, false},
	}
	for _, tc := range cases {
		got, ok := ExtractPercent(tc.in)
		assert.Equalf(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDeltaf(t, tc.want, got, 0.001, "input %q", tc.in)
		}
	}
}

func TestCheckCrossField(t *testing.T) {
	issues := CheckCrossField(map[string]string{
		constants.FieldRoomRentCapping: "2%",
		constants.FieldICUCapping:      "5%",
		constants.FieldCoPayment:       "10%",
	})
	assert.Empty(t, issues)

	issues = CheckCrossField(map[string]string{
		constants.FieldRoomRentCapping:  "120%",
		constants.FieldCoPayment:        "60%",
		constants.FieldDailyCashBenefit: "8000",
	})
	require.Len(t, issues, 3)
	assert.Contains(t, issues[0], "room_rent_capping")
	assert.Contains(t, issues[1], "co-payment")
	assert.Contains(t, issues[2], "daily cash benefit")
}

func TestCheckCrossFieldCoPayBoundary(t *testing.T) {
	issues := CheckCrossField(map[string]string{constants.FieldCoPayment: "50%"})
	assert.Empty(t, issues)

	issues = CheckCrossField(map[string]string{constants.FieldCoPayment: "51%"})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "co-payment")
}
