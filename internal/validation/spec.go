// Package validation checks extracted policy fields before rule evaluation.
// Every field has a static spec (kind, bounds, required flag); validating a
// value never fails with an error, it always produces a result object with a
// heuristic confidence score.
package validation

import "github.com/rajiviyer/medical-doc-extractor/constants"

// Kind describes how a field's raw string is interpreted.
type Kind string

const (
	KindCurrency        Kind = "currency"          // plain amount, symbols/commas tolerated
	KindPercentage      Kind = "percentage"        // numeric percentage in [Min,Max]
	KindAmountOrPercent Kind = "amount_or_percent" // percentage if marked with %, else amount
	KindDate            Kind = "date"              // delegated to the date normalizer
	KindLiteralSet      Kind = "literal_set"       // one of AllowedLiterals only
	KindFreeText        Kind = "free_text"
)

// FieldSpec is the static validation configuration for one policy field.
// AllowedLiterals short-circuit numeric parsing on any kind: a capping of
// "at actuals" is valid even though it is not a number.
type FieldSpec struct {
	Kind            Kind
	Min             float64
	Max             float64
	Required        bool
	AllowedLiterals []string
	Description     string
}

// atActuals marks an uncapped benefit.
var atActuals = []string{"at actuals", "actuals", "actual"}

// DefaultFieldSpecs returns the registry for the recognized policy fields.
// Bounds are the business sanity ranges for Indian retail health policies.
func DefaultFieldSpecs() map[string]FieldSpec {
	return map[string]FieldSpec{
		constants.FieldBaseSumAssured: {
			Kind: KindCurrency, Min: 10000, Max: 10000000, Required: true,
			Description: "Base Sum Assured/Base Sum Insured",
		},
		constants.FieldRoomRentCapping: {
			Kind: KindPercentage, Min: 0, Max: 100, Required: true, AllowedLiterals: atActuals,
			Description: "Cap on room rent",
		},
		constants.FieldICUCapping: {
			Kind: KindPercentage, Min: 0, Max: 100, Required: true, AllowedLiterals: atActuals,
			Description: "Cap on ICU charges",
		},
		constants.FieldRoomCategory: {
			Kind: KindPercentage, Min: 0, Max: 100, AllowedLiterals: atActuals,
			Description: "Cap on room category",
		},
		constants.FieldMedicalPractition: {
			Kind: KindPercentage, Min: 0, Max: 100, AllowedLiterals: atActuals,
			Description: "Cap on medical practitioners",
		},
		constants.FieldHazardousSports: {
			Kind: KindPercentage, Min: 0, Max: 100, AllowedLiterals: atActuals,
			Description: "Cap on hazardous sports treatment",
		},
		constants.FieldOtherExpenses: {
			Kind: KindPercentage, Min: 0, Max: 100, AllowedLiterals: atActuals,
			Description: "Cap on other expenses",
		},
		constants.FieldModernTreatment: {
			Kind: KindPercentage, Min: 0, Max: 100, AllowedLiterals: atActuals,
			Description: "Cap on modern treatment",
		},
		constants.FieldCataractCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 100000,
			Description: "Cap on cataract",
		},
		constants.FieldHerniaCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 100000,
			Description: "Cap on hernia",
		},
		constants.FieldJointReplacement: {
			Kind: KindAmountOrPercent, Min: 0, Max: 500000,
			Description: "Cap on joint replacement",
		},
		constants.FieldAnySurgeryCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 500000,
			Description: "Cap on any kind of surgery",
		},
		constants.FieldDialysisCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 200000,
			Description: "Cap on dialysis treatment",
		},
		constants.FieldChemoCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 500000,
			Description: "Cap on chemotherapy treatment",
		},
		constants.FieldRadioCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 300000,
			Description: "Cap on radiotherapy treatment",
		},
		constants.FieldConsumablesCapping: {
			Kind: KindPercentage, Min: 0, Max: 100, AllowedLiterals: atActuals,
			Description: "Cap on consumable and non-medical items",
		},
		constants.FieldMaternityCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 200000,
			Description: "Cap on maternity",
		},
		constants.FieldAmbulanceCapping: {
			Kind: KindCurrency, Min: 0, Max: 10000,
			Description: "Cap on ambulance charge",
		},
		constants.FieldDailyCashBenefit: {
			Kind: KindCurrency, Min: 0, Max: 5000,
			Description: "Daily cash benefit amount",
		},
		constants.FieldCoPayment: {
			Kind: KindPercentage, Min: 0, Max: 50,
			Description: "Co-payment percentage",
		},
		constants.FieldOPDDaycareCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 100000,
			Description: "Cap on OPD, Daycare, Domiciliary treatment",
		},
		constants.FieldPrePostHospCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 100000,
			Description: "Cap on pre and post hospitalization expenses",
		},
		constants.FieldDiagnosticsCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 50000,
			Description: "Cap on diagnostic tests and investigation",
		},
		constants.FieldImplantsCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 300000,
			Description: "Cap on implants, stents, prosthetics",
		},
		constants.FieldMentalIllness: {
			Kind: KindAmountOrPercent, Min: 0, Max: 200000,
			Description: "Cap on mental illness treatment",
		},
		constants.FieldOrganDonorCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 500000,
			Description: "Cap on organ donor expenses",
		},
		constants.FieldBariatricSurgery: {
			Kind: KindAmountOrPercent, Min: 0, Max: 400000,
			Description: "Cap on bariatric, obesity surgery",
		},
		constants.FieldCancerCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 1000000,
			Description: "Cap on cancer treatment in specific plans",
		},
		constants.FieldCongenitalCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 300000,
			Description: "Cap on internal, congenital disease",
		},
		constants.FieldAyushCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 100000,
			Description: "Cap on AYUSH hospitalization",
		},
		constants.FieldVaccinationCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 50000,
			Description: "Cap on vaccination, preventive health check up",
		},
		constants.FieldProsthesesCapping: {
			Kind: KindAmountOrPercent, Min: 0, Max: 100000,
			Description: "Cap on artificial prostheses, aids",
		},
		constants.FieldPolicyStartDate: {
			Kind: KindDate, Description: "Policy start date",
		},
		constants.FieldPolicyEndDate: {
			Kind: KindDate, Description: "Policy end date",
		},
		constants.FieldDateOfAdmission: {
			Kind: KindDate, Description: "Date of admission to hospital",
		},
		constants.FieldInceptionDate: {
			Kind: KindDate, Description: "Policy inception date",
		},
		constants.FieldLastPaymentDate: {
			Kind: KindDate, Description: "Last premium payment date",
		},
		constants.FieldPolicyStatus: {
			Kind: KindLiteralSet, AllowedLiterals: []string{"active", "lapsed", "grace"},
			Description: "Policy status",
		},
		constants.FieldGracePeriod: {
			Kind: KindCurrency, Min: 0, Max: 365,
			Description: "Grace period in days",
		},
	}
}
