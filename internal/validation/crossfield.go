package validation

import (
	"fmt"
	"sort"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

// CheckCrossField verifies logical relationships between already-extracted
// fields. Every rule is evaluated unconditionally so one report surfaces all
// issues at once; an empty slice means the fields are mutually consistent.
func CheckCrossField(data map[string]string) []string {
	issues := make([]string, 0, 4)

	// Every capping percentage is bounded independently at 100%: caps apply
	// to different bill lines, so there is no combined-total rule.
	specs := DefaultFieldSpecs()
	names := make([]string, 0, len(specs))
	for name, spec := range specs {
		if spec.Kind == KindPercentage && name != constants.FieldCoPayment {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, field := range names {
		if v, ok := data[field]; ok {
			if pct, isPct := percentOf(v); isPct && pct > 100 {
				issues = append(issues, fmt.Sprintf("%s cannot exceed 100%%", field))
			}
		}
	}

	if v, ok := data[constants.FieldCoPayment]; ok {
		if pct, isPct := percentOf(v); isPct && pct > 50 {
			issues = append(issues, fmt.Sprintf("co-payment %g%% should not exceed 50%%", pct))
		}
	}

	if v, ok := data[constants.FieldDailyCashBenefit]; ok {
		if amount, isNum := ExtractNumeric(v); isNum && amount > 5000 {
			issues = append(issues, fmt.Sprintf("daily cash benefit %g seems unusually high (>5000)", amount))
		}
	}

	return issues
}

// percentOf reads a percentage with or without an explicit % marker.
func percentOf(value string) (float64, bool) {
	if pct, ok := ExtractPercent(value); ok {
		return pct, true
	}
	return ExtractNumeric(value)
}
