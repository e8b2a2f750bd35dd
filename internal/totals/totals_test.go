package totals

import (
	"testing"

	"github.com/sells-group/claims-cli/internal/model"
)

func TestCompute_ScenarioBreakdown(t *testing.T) {
	fields := model.FieldValues{
		model.FieldSpecialHealthExpenses: 100.0,
		model.FieldSpecialMedications:    50.0,
		model.FieldSpecialReduction:      30.0,
		model.FieldGeneralFixed:          200.0,
	}

	b := Compute(fields)
	if b.Special != 120 {
		t.Errorf("special: expected 120, got %v", b.Special)
	}
	if b.General != 200 {
		t.Errorf("general: expected 200, got %v", b.General)
	}
	if b.Grand != 320 {
		t.Errorf("grand: expected 320, got %v", b.Grand)
	}
}

func TestSpecial_ReductionExceedsSum_ClampsAtZero(t *testing.T) {
	fields := model.FieldValues{
		model.FieldSpecialTherapy:   40.0,
		model.FieldSpecialReduction: 500.0,
	}
	if got := Special(fields); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := Grand(fields); got != General(fields) {
		t.Errorf("grand should equal general when special clamps, got %v", got)
	}
}

func TestCompute_EmptyFields(t *testing.T) {
	b := Compute(model.FieldValues{})
	if b.Special != 0 || b.General != 0 || b.Grand != 0 {
		t.Errorf("expected all zero, got %+v", b)
	}
}

func TestCompute_NonNumericTreatedAsZero(t *testing.T) {
	fields := model.FieldValues{
		model.FieldSpecialHealthExpenses: "not a number",
		model.FieldSpecialMedications:    "75.5",
		model.FieldGeneralRest:           nil,
		model.FieldGeneralUplift:         true,
		model.FieldGeneralFixed:          10,
	}
	b := Compute(fields)
	if b.Special != 75.5 {
		t.Errorf("special: expected 75.5, got %v", b.Special)
	}
	if b.General != 10 {
		t.Errorf("general: expected 10, got %v", b.General)
	}
}

func TestGrand_AlwaysSumOfParts(t *testing.T) {
	cases := []model.FieldValues{
		{},
		{model.FieldSpecialReduction: 1000.0},
		{model.FieldSpecialFixes: 12.34, model.FieldGeneralUplift: 56.78},
		{model.FieldSpecialLoanerVehicle: "19.99", model.FieldGeneralRest: "0.01"},
	}
	for i, fields := range cases {
		if got, want := Grand(fields), Special(fields)+General(fields); got != want {
			t.Errorf("case %d: grand %v != special+general %v", i, got, want)
		}
		if Special(fields) < 0 {
			t.Errorf("case %d: special went negative", i)
		}
	}
}
