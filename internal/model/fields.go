package model

// FieldValues is the raw field mapping accumulated by the submission wizard.
// Values are whatever the input layer produced (strings from forms or YAML,
// numbers, bools); downstream stages coerce as needed.
type FieldValues map[string]any

// Incident / claimant field names. These match the feature names the ML
// model was trained on, so they are wire-sensitive.
const (
	FieldAccidentDate      = "AccidentDate"
	FieldAccidentType      = "AccidentType"
	FieldAccidentLocation  = "AccidentLocation"
	FieldWeatherConditions = "WeatherConditions"
	FieldVehicleType       = "VehicleType"
	FieldDriverAge         = "DriverAge"
	FieldVehicleAge        = "VehicleAge"
	FieldNumberOfPassengers = "NumberOfPassengers"
	FieldInjuryPrognosis   = "InjuryPrognosis"
	FieldInjuryDescription = "InjuryDescription"
	FieldDominantInjury    = "DominantInjury"
	FieldGender            = "Gender"
)

// Boolean flag field names. Coerced with strict equality to true; anything
// else becomes false.
const (
	FieldWhiplash                 = "Whiplash"
	FieldPoliceReportFiled        = "PoliceReportFiled"
	FieldWitnessPresent           = "WitnessPresent"
	FieldMinorPsychologicalInjury = "MinorPsychologicalInjury"
	FieldExceptionalCircumstances = "ExceptionalCircumstances"
)

// Special-damages field names contributing to the special total.
const (
	FieldSpecialHealthExpenses   = "SpecialHealthExpenses"
	FieldSpecialMedications      = "SpecialMedications"
	FieldSpecialRehabilitation   = "SpecialRehabilitation"
	FieldSpecialTherapy          = "SpecialTherapy"
	FieldSpecialEarningsLoss     = "SpecialEarningsLoss"
	FieldSpecialUsageLoss        = "SpecialUsageLoss"
	FieldSpecialTripCosts        = "SpecialTripCosts"
	FieldSpecialJourneyExpenses  = "SpecialJourneyExpenses"
	FieldSpecialAssetDamage      = "SpecialAssetDamage"
	FieldSpecialFixes            = "SpecialFixes"
	FieldSpecialLoanerVehicle    = "SpecialLoanerVehicle"

	// FieldSpecialReduction is subtracted from the special total.
	FieldSpecialReduction = "SpecialReduction"
)

// General-damages field names contributing to the general total.
const (
	FieldGeneralFixed  = "GeneralFixed"
	FieldGeneralRest   = "GeneralRest"
	FieldGeneralUplift = "GeneralUplift"
)

// SpecialDamageFields lists every field contributing positively to the
// special-damages total, in display order.
var SpecialDamageFields = []string{
	FieldSpecialHealthExpenses,
	FieldSpecialMedications,
	FieldSpecialRehabilitation,
	FieldSpecialTherapy,
	FieldSpecialEarningsLoss,
	FieldSpecialUsageLoss,
	FieldSpecialTripCosts,
	FieldSpecialJourneyExpenses,
	FieldSpecialAssetDamage,
	FieldSpecialFixes,
	FieldSpecialLoanerVehicle,
}

// GeneralDamageFields lists every field contributing to the general-damages
// total.
var GeneralDamageFields = []string{
	FieldGeneralFixed,
	FieldGeneralRest,
	FieldGeneralUplift,
}

// BooleanFields lists every flag field that must reach the payload as a
// strict bool.
var BooleanFields = []string{
	FieldWhiplash,
	FieldPoliceReportFiled,
	FieldWitnessPresent,
	FieldMinorPsychologicalInjury,
	FieldExceptionalCircumstances,
}
