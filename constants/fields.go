package constants

// Recognized policy field names, as produced by the LLM extraction layer.
// The long snake_case names come from the extraction schema and are stable:
// renaming one breaks previously stored extractions.
const (
	FieldBaseSumAssured     = "base_sum_assured"
	FieldRoomRentCapping    = "room_rent_capping"
	FieldICUCapping         = "icu_capping"
	FieldCoPayment          = "co_payment"
	FieldPolicyStartDate    = "policy_start_date"
	FieldPolicyEndDate      = "policy_end_date"
	FieldDateOfAdmission    = "date_of_admission"
	FieldInceptionDate      = "inception_date"
	FieldPolicyStatus       = "policy_status"
	FieldGracePeriod        = "grace_period"
	FieldLastPaymentDate    = "last_payment_date"
	FieldCataractCapping    = "cataract_capping"
	FieldHerniaCapping      = "hernia_capping"
	FieldJointReplacement   = "joint_replacement_capping"
	FieldBariatricSurgery   = "bariatric_obesity_surgery_capping"
	FieldDailyCashBenefit   = "daily_cash_benefit"
	FieldMaternityCapping   = "maternity_capping"
	FieldAmbulanceCapping   = "ambulance_charge_capping"
	FieldRoomCategory       = "room_category_capping"
	FieldMedicalPractition  = "medical_practitioners_capping"
	FieldHazardousSports    = "treatment_related_to_participation_as_a_non_professional_in_hazardous_or_adventure_sports"
	FieldOtherExpenses      = "other_expenses_capping"
	FieldModernTreatment    = "modern_treatment_capping"
	FieldAnySurgeryCapping  = "any_kind_of_surgery_specific_capping"
	FieldDialysisCapping    = "treatment_based_capping_dialysis"
	FieldChemoCapping       = "treatment_based_capping_chemotherapy"
	FieldRadioCapping       = "treatment_based_capping_radiotherapy"
	FieldConsumablesCapping = "consumable_and_non_medical_items_capping"
	FieldOPDDaycareCapping  = "opd_daycare_domiciliary_treatment_capping"
	FieldPrePostHospCapping = "pre_post_hospitalization_expenses_capping"
	FieldDiagnosticsCapping = "diagnostic_tests_and_investigation_capping"
	FieldImplantsCapping    = "implants_stents_prosthetics_capping"
	FieldMentalIllness      = "mental_illness_treatment_capping"
	FieldOrganDonorCapping  = "organ_donor_expenses_capping"
	FieldCancerCapping      = "cancer_treatment_capping_in_specific_plans"
	FieldCongenitalCapping  = "internal_congenital_disease_capping"
	FieldAyushCapping       = "ayush_hospitalization_capping"
	FieldVaccinationCapping = "vaccination_preventive_health_check_up_capping"
	FieldProsthesesCapping  = "artificial_prostheses_aids_capping"
)

// Hospital bill line keys consumed by the rule engine.
const (
	BillRoomRent      = "room_rent"
	BillICUCharges    = "icu_charges"
	BillProcedureCost = "procedure_cost"
)
