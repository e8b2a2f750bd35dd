package wizard

import (
	"fmt"
	"strings"

	"github.com/sells-group/claims-cli/internal/model"
)

// Step is one of the five ordered wizard steps.
type Step int

const (
	StepIncidentDetails Step = iota
	StepDamageAssessment
	StepMedicalInformation
	StepFinancialDetails
	StepReviewAndSubmit
)

const stepCount = 5

func (s Step) String() string {
	switch s {
	case StepIncidentDetails:
		return "incident_details"
	case StepDamageAssessment:
		return "damage_assessment"
	case StepMedicalInformation:
		return "medical_information"
	case StepFinancialDetails:
		return "financial_details"
	case StepReviewAndSubmit:
		return "review_and_submit"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// requiredFields gates forward navigation out of each step.
var requiredFields = map[Step][]string{
	StepIncidentDetails: {
		model.FieldAccidentDate,
		model.FieldAccidentType,
		model.FieldWeatherConditions,
		model.FieldAccidentLocation,
		model.FieldVehicleType,
		model.FieldDriverAge,
	},
	StepDamageAssessment: {
		model.FieldVehicleAge,
		model.FieldNumberOfPassengers,
	},
	StepMedicalInformation: {
		model.FieldInjuryPrognosis,
		model.FieldDominantInjury,
		model.FieldGender,
	},
	StepFinancialDetails: nil,
	StepReviewAndSubmit:  nil,
}

// CriticalFields gate review entry and submission regardless of which
// per-step validations already passed.
var CriticalFields = []string{
	model.FieldAccidentDate,
	model.FieldAccidentType,
	model.FieldInjuryPrognosis,
	model.FieldDominantInjury,
}

// ValidationError reports the required fields missing from a step
// transition or submission. Step-local and recoverable.
type ValidationError struct {
	Step    Step
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wizard: step %s missing required fields: %s", e.Step, strings.Join(e.Missing, ", "))
}

// missingFields returns the named fields that are absent or blank.
func missingFields(fields model.FieldValues, names []string) []string {
	var missing []string
	for _, name := range names {
		if !present(fields[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}
