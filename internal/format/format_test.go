package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claims-cli/internal/model"
)

func TestClaimData_EmptyInput_FullyPopulated(t *testing.T) {
	data := ClaimData(model.FieldValues{})

	for name, def := range CategoricalDefaults {
		assert.Equal(t, def, data[name], "categorical %s", name)
	}
	for _, name := range model.BooleanFields {
		assert.Equal(t, false, data[name], "boolean %s", name)
	}
	for _, name := range model.SpecialDamageFields {
		assert.Equal(t, 0.0, data[name], "special %s", name)
	}
	for _, name := range model.GeneralDamageFields {
		assert.Equal(t, 0.0, data[name], "general %s", name)
	}
	assert.Equal(t, 30.0, data[model.FieldDriverAge])
	assert.Equal(t, 5.0, data[model.FieldVehicleAge])
	assert.Equal(t, 1.0, data[model.FieldNumberOfPassengers])

	for name, v := range data {
		require.NotNil(t, v, "field %s must not be nil", name)
	}
}

func TestClaimData_BooleanStrictCoercion(t *testing.T) {
	data := ClaimData(model.FieldValues{
		model.FieldWhiplash:          true,
		model.FieldPoliceReportFiled: "true", // string, not strictly true
		model.FieldWitnessPresent:    1,
	})
	assert.Equal(t, true, data[model.FieldWhiplash])
	assert.Equal(t, false, data[model.FieldPoliceReportFiled])
	assert.Equal(t, false, data[model.FieldWitnessPresent])
	assert.Equal(t, false, data[model.FieldExceptionalCircumstances])
}

func TestClaimData_NumericCoercion(t *testing.T) {
	data := ClaimData(model.FieldValues{
		model.FieldSpecialHealthExpenses: "150.25",
		model.FieldSpecialMedications:    42,
		model.FieldSpecialTherapy:        "garbage",
	})
	assert.Equal(t, 150.25, data[model.FieldSpecialHealthExpenses])
	assert.Equal(t, 42.0, data[model.FieldSpecialMedications])
	assert.Equal(t, 0.0, data[model.FieldSpecialTherapy])
}

func TestDate_Normalization(t *testing.T) {
	assert.Equal(t, "2026-03-15", Date("2026-03-15"))
	assert.Equal(t, "2026-03-15", Date("2026-03-15T10:30:00Z"))
	assert.Equal(t, "2026-03-15", Date("15/03/2026"))
	assert.Equal(t, "2026-03-15", Date(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)))
}

func TestDate_FallbackToToday(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	defer func() { now = orig }()

	assert.Equal(t, "2026-08-28", Date(nil))
	assert.Equal(t, "2026-08-28", Date("not a date"))
}

func TestClaimData_CountDefaultsNotZero(t *testing.T) {
	data := ClaimData(model.FieldValues{
		model.FieldDriverAge:          "",
		model.FieldVehicleAge:         0,
		model.FieldNumberOfPassengers: 3,
	})
	assert.Equal(t, 30.0, data[model.FieldDriverAge])
	assert.Equal(t, 5.0, data[model.FieldVehicleAge])
	assert.Equal(t, 3.0, data[model.FieldNumberOfPassengers])
}

func TestPayload_FoldsPredictionRecord(t *testing.T) {
	rec := &model.PredictionRecord{
		SettlementAmount: 1250.50,
		ConfidenceScore:  0.9,
		Source:           model.SourceMLService,
	}
	fields := model.FieldValues{
		model.FieldAccidentType:          "Rear end",
		model.FieldAccidentDate:          "2026-02-01",
		model.FieldSpecialHealthExpenses: 9999.0, // must not leak into Amount
	}

	p := Payload(fields, rec, map[string]any{"settlement_amount": 1250.50})

	require.NotNil(t, p.MLPrediction)
	assert.Equal(t, 1250.50, p.Amount, "amount must be the ML settlement, not a local total")
	assert.Equal(t, *rec, p.MLPrediction.PredictionRecord)
	assert.Equal(t, model.ClaimStatusPendingReview, p.Status)
	assert.Equal(t, "Claim - Rear end - 2026-02-01", p.Title)
	assert.Equal(t, p.ClaimData, p.MLPrediction.Input)
}
