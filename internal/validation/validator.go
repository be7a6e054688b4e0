package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rajiviyer/medical-doc-extractor/internal/dates"
)

// Heuristic confidence buckets carried over from the extraction pipeline's
// original calibration. Fixed values, not probabilities: keep them stable so
// stored reports stay comparable across versions.
const (
	ConfidenceInvalid       = 0.3
	ConfidenceMissing       = 0.5
	ConfidenceOptionalEmpty = 0.8
	ConfidenceValid         = 0.9
)

// FieldValidationResult is the immutable outcome of validating one field.
type FieldValidationResult struct {
	FieldName          string   `json:"field_name"`
	Value              string   `json:"value"`
	IsValid            bool     `json:"is_valid"`
	ConfidenceScore    float64  `json:"confidence_score"`
	ValidationMessages []string `json:"validation_messages"`
	SuggestedValue     string   `json:"suggested_value,omitempty"`
}

var (
	reNumber   = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	rePercent  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:%|percent|per cent)`)
	reCurrency = regexp.MustCompile(`[₹$€£,]`)
)

// ValidateField validates one raw value against its spec. present=false
// means the extraction produced null or omitted the field entirely; the
// literals "" and "null" are treated the same way.
func ValidateField(fieldName, value string, present bool, spec FieldSpec) FieldValidationResult {
	trimmed := strings.TrimSpace(value)
	if !present || trimmed == "" || strings.EqualFold(trimmed, "null") {
		if spec.Required {
			return FieldValidationResult{
				FieldName:          fieldName,
				Value:              value,
				IsValid:            false,
				ConfidenceScore:    ConfidenceMissing,
				ValidationMessages: []string{fmt.Sprintf("%s is required but was not found", fieldName)},
			}
		}
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              value,
			IsValid:            true,
			ConfidenceScore:    ConfidenceOptionalEmpty,
			ValidationMessages: []string{fmt.Sprintf("%s is optional and not provided", fieldName)},
		}
	}

	// Literal match beats numeric parsing for every kind ("at actuals"
	// instead of a percentage, a status word instead of a number).
	if matchesLiteral(trimmed, spec.AllowedLiterals) {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              value,
			IsValid:            true,
			ConfidenceScore:    ConfidenceValid,
			ValidationMessages: []string{fmt.Sprintf("value %q matches an allowed literal", trimmed)},
		}
	}

	switch spec.Kind {
	case KindPercentage:
		return validatePercentage(fieldName, value, trimmed, spec)
	case KindCurrency:
		return validateCurrency(fieldName, value, trimmed, spec)
	case KindAmountOrPercent:
		if _, ok := ExtractPercent(trimmed); ok {
			return validatePercentage(fieldName, value, trimmed, FieldSpec{Kind: KindPercentage, Min: 0, Max: 100})
		}
		return validateCurrency(fieldName, value, trimmed, spec)
	case KindDate:
		return validateDate(fieldName, value, trimmed)
	case KindLiteralSet:
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              value,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{fmt.Sprintf("value %q is not one of %s", trimmed, strings.Join(spec.AllowedLiterals, ", "))},
		}
	case KindFreeText:
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              value,
			IsValid:            true,
			ConfidenceScore:    ConfidenceValid,
			ValidationMessages: []string{"free-text field accepted"},
		}
	default:
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              value,
			IsValid:            true,
			ConfidenceScore:    ConfidenceMissing,
			ValidationMessages: []string{fmt.Sprintf("unknown validation kind %q for %s", spec.Kind, fieldName)},
		}
	}
}

// ValidateAll validates every entry of the extraction against the registry.
// Required fields absent from the data are validated too (as missing), so a
// sparse extraction still produces a complete picture.
func ValidateAll(data map[string]string, specs map[string]FieldSpec) map[string]FieldValidationResult {
	results := make(map[string]FieldValidationResult, len(data))

	for name, value := range data {
		spec, known := specs[name]
		if !known {
			results[name] = FieldValidationResult{
				FieldName:          name,
				Value:              value,
				IsValid:            true,
				ConfidenceScore:    ConfidenceMissing,
				ValidationMessages: []string{fmt.Sprintf("unknown field %q - no validation rules defined", name)},
			}
			continue
		}
		results[name] = ValidateField(name, value, true, spec)
	}

	// Deterministic order for the missing-required sweep.
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec := specs[name]
		if _, seen := results[name]; !seen && spec.Required {
			results[name] = ValidateField(name, "", false, spec)
		}
	}

	return results
}

func validatePercentage(fieldName, raw, trimmed string, spec FieldSpec) FieldValidationResult {
	pct, ok := ExtractPercent(trimmed)
	if !ok {
		// A bare number on a percentage field is read as a percentage.
		pct, ok = ExtractNumeric(trimmed)
	}
	if !ok {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              raw,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{fmt.Sprintf("could not extract percentage value from %q", trimmed)},
		}
	}
	if pct < spec.Min {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              raw,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{fmt.Sprintf("percentage %g%% is below minimum %g%%", pct, spec.Min)},
		}
	}
	if pct > spec.Max {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              raw,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{fmt.Sprintf("percentage %g%% is above maximum %g%%", pct, spec.Max)},
		}
	}
	return FieldValidationResult{
		FieldName:          fieldName,
		Value:              raw,
		IsValid:            true,
		ConfidenceScore:    ConfidenceValid,
		ValidationMessages: []string{fmt.Sprintf("percentage %g%% within [%g%%, %g%%]", pct, spec.Min, spec.Max)},
	}
}

func validateCurrency(fieldName, raw, trimmed string, spec FieldSpec) FieldValidationResult {
	amount, ok := ExtractNumeric(trimmed)
	if !ok {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              raw,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{fmt.Sprintf("could not extract numeric value from %q", trimmed)},
		}
	}
	if amount < spec.Min {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              raw,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{fmt.Sprintf("amount %g is below minimum %g", amount, spec.Min)},
		}
	}
	if spec.Max > 0 && amount > spec.Max {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              raw,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{fmt.Sprintf("amount %g is above maximum %g", amount, spec.Max)},
		}
	}
	return FieldValidationResult{
		FieldName:          fieldName,
		Value:              raw,
		IsValid:            true,
		ConfidenceScore:    ConfidenceValid,
		ValidationMessages: []string{fmt.Sprintf("amount %g within bounds", amount)},
	}
}

func validateDate(fieldName, raw, trimmed string) FieldValidationResult {
	parsed, err := dates.Parse(trimmed)
	if err != nil {
		return FieldValidationResult{
			FieldName:          fieldName,
			Value:              raw,
			IsValid:            false,
			ConfidenceScore:    ConfidenceInvalid,
			ValidationMessages: []string{err.Error()},
		}
	}
	return FieldValidationResult{
		FieldName:          fieldName,
		Value:              raw,
		IsValid:            true,
		ConfidenceScore:    ConfidenceValid,
		ValidationMessages: []string{"date parsed successfully"},
		SuggestedValue:     parsed.Format("2006-01-02"),
	}
}

func matchesLiteral(value string, literals []string) bool {
	for _, lit := range literals {
		if strings.EqualFold(value, lit) {
			return true
		}
	}
	return false
}

// ExtractNumeric pulls a number out of a currency-ish string, tolerating
// symbols and comma grouping ("₹ 5,00,000" -> 500000).
func ExtractNumeric(value string) (float64, bool) {
	cleaned := reCurrency.ReplaceAllString(strings.TrimSpace(value), "")
	m := reNumber.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ExtractPercent pulls a percentage out of a string; the value must carry an
// explicit percent marker ("2%", "2 percent").
func ExtractPercent(value string) (float64, bool) {
	m := rePercent.FindStringSubmatch(strings.ToLower(value))
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
