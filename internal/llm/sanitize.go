package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

// fieldSynonyms maps labels the model likes to emit onto registry names.
var fieldSynonyms = map[string]string{
	"sum_assured":      "base_sum_assured",
	"sum_insured":      "base_sum_assured",
	"base_sum_insured": "base_sum_assured",
	"room_rent_limit":  "room_rent_capping",
	"icu_limit":        "icu_capping",
	"copay":            "co_payment",
	"copayment":        "co_payment",
	"policy_inception": "inception_date",
	"start_date":       "policy_start_date",
	"end_date":         "policy_end_date",
	"admission_date":   "date_of_admission",
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (sum_insured -> base_sum_assured)
// - Drops null/empty values: a missing key is the only "not found"
// - Coerces numeric -> string so every field is uniformly raw text
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, specs map[string]validation.FieldSpec, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// 1) rename synonyms to registry names
	for from, to := range maps.Clone(fieldSynonyms) {
		if v, ok := m[from]; ok {
			// don't overwrite an existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 2) coerce every value to a trimmed string; null/empty means absent
	for k, v := range maps.Clone(m) {
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case float64:
			if t == float64(int64(t)) {
				m[k] = fmt.Sprintf("%d", int64(t))
			} else {
				m[k] = fmt.Sprintf("%g", t)
			}
		case bool:
			m[k] = fmt.Sprintf("%t", t)
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			// objects/arrays have no place in a flat field map
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 3) remove keys the registry does not know
	for k := range maps.Clone(m) {
		if _, ok := specs[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// DecodeFields unmarshals sanitized JSON into the field map.
func DecodeFields(sanitized []byte) (PolicyFields, error) {
	var out PolicyFields
	if err := json.Unmarshal(sanitized, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}
