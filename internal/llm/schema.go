package llm

import (
	"sort"

	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

// BuildPolicyJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map, derived from the field registry. We pass this to the provider
// as a structured output constraint and also use it locally to validate.
//
// Every field is an optional string: numeric interpretation and bounds
// checking happen in the validation package, not in the schema, because raw
// policy values carry symbols and literals ("₹5,00,000", "at actuals").
func BuildPolicyJSONSchema(specs map[string]validation.FieldSpec) map[string]any {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(map[string]any, len(names))
	for _, name := range names {
		props[name] = map[string]any{"type": "string", "minLength": 1}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{},
	}
}
