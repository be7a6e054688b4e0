package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

func sanitized(t *testing.T, raw string) PolicyFields {
	t.Helper()
	out, _, err := NormalizeAndSanitizeJSON([]byte(raw), validation.DefaultFieldSpecs(), nil)
	require.NoError(t, err)
	fields, err := DecodeFields(out)
	require.NoError(t, err)
	return fields
}

func TestSanitizeDropsNullAndEmpty(t *testing.T) {
	fields := sanitized(t, `{
		"base_sum_assured": "500000",
		"co_payment": null,
		"room_rent_capping": "",
		"icu_capping": "  "
	}`)

	assert.Equal(t, "500000", fields["base_sum_assured"])
	_, hasCoPay := fields["co_payment"]
	assert.False(t, hasCoPay)
	_, hasRoomRent := fields["room_rent_capping"]
	assert.False(t, hasRoomRent)
	_, hasICU := fields["icu_capping"]
	assert.False(t, hasICU)
}

func TestSanitizeCoercesNumbers(t *testing.T) {
	fields := sanitized(t, `{"base_sum_assured": 500000, "co_payment": 12.5}`)
	assert.Equal(t, "500000", fields["base_sum_assured"])
	assert.Equal(t, "12.5", fields["co_payment"])
}

func TestSanitizeRenamesSynonyms(t *testing.T) {
	fields := sanitized(t, `{"sum_insured": "300000", "copay": "10%"}`)
	assert.Equal(t, "300000", fields["base_sum_assured"])
	assert.Equal(t, "10%", fields["co_payment"])

	// An existing canonical value wins over its synonym.
	fields = sanitized(t, `{"base_sum_assured": "500000", "sum_insured": "300000"}`)
	assert.Equal(t, "500000", fields["base_sum_assured"])
}

func TestSanitizeRemovesUnknownKeys(t *testing.T) {
	fields := sanitized(t, `{"base_sum_assured": "500000", "chain_of_thought": "because"}`)
	_, has := fields["chain_of_thought"]
	assert.False(t, has)
	assert.Len(t, fields, 1)
}

func TestSanitizedOutputValidatesAgainstSchema(t *testing.T) {
	specs := validation.DefaultFieldSpecs()
	schema := BuildPolicyJSONSchema(specs)

	raw := []byte(`{"base_sum_assured": 500000, "room_rent_capping": null, "made_up": [1]}`)
	require.Error(t, ValidateJSONAgainstSchema(schema, raw))

	cleaned, _, err := NormalizeAndSanitizeJSON(raw, specs, nil)
	require.NoError(t, err)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, cleaned))
}

func TestSchemaRejectsNonString(t *testing.T) {
	schema := BuildPolicyJSONSchema(validation.DefaultFieldSpecs())

	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"base_sum_assured": "500000"}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"base_sum_assured": 500000}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"unknown_key": "x"}`)))
}
