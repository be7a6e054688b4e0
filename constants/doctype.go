package constants

import "strings"

// DocType classifies an input document to decide which extraction and
// validation profile applies.
type DocType string

const (
	HealthInsurance DocType = "HealthInsurance"
	LifeInsurance   DocType = "LifeInsurance"
	MasterPolicy    DocType = "MasterPolicy"
	PolicySchedule  DocType = "PolicySchedule"
	Endorsement     DocType = "Endorsement"
	ClaimDocument   DocType = "ClaimDocument"
	MedicalReport   DocType = "MedicalReport"
	HospitalBill    DocType = "HospitalBill"
	OtherDocument   DocType = "Other"
)

var allDocTypes = []DocType{
	HealthInsurance,
	LifeInsurance,
	MasterPolicy,
	PolicySchedule,
	Endorsement,
	ClaimDocument,
	MedicalReport,
	HospitalBill,
	OtherDocument,
}

// DocCategory is the coarse grouping of document types.
type DocCategory string

const (
	CategoryPolicy         DocCategory = "policy"
	CategoryClaim          DocCategory = "claim"
	CategoryMedical        DocCategory = "medical"
	CategoryAdministrative DocCategory = "administrative"
)

// CategoryOf maps a document type to its coarse category.
func CategoryOf(t DocType) DocCategory {
	switch t {
	case HealthInsurance, LifeInsurance, MasterPolicy, PolicySchedule, Endorsement:
		return CategoryPolicy
	case ClaimDocument, HospitalBill:
		return CategoryClaim
	case MedicalReport:
		return CategoryMedical
	default:
		return CategoryAdministrative
	}
}

func DocTypesAsStringSlice() []string {
	result := make([]string, len(allDocTypes))
	for i, t := range allDocTypes {
		result[i] = string(t)
	}
	return result
}

// CanonicalizeDocType resolves a free-form label to a known document type.
func CanonicalizeDocType(input string) (DocType, bool) {
	if input == "" {
		return OtherDocument, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]DocType{
		"mediclaim":         HealthInsurance,
		"health policy":     HealthInsurance,
		"medical insurance": HealthInsurance,
		"term life":         LifeInsurance,
		"policy wordings":   MasterPolicy,
		"base policy":       MasterPolicy,
		"schedule":          PolicySchedule,
		"rider":             Endorsement,
		"discharge summary": ClaimDocument,
		"claim form":        ClaimDocument,
		"lab report":        MedicalReport,
		"itemized bill":     HospitalBill,
		"invoice":           HospitalBill,
	}

	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allDocTypes {
		if normalized == strings.ToLower(string(t)) {
			return t, true
		}
	}

	return OtherDocument, false
}
