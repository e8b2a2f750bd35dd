// Package format normalizes raw wizard field values into the canonical
// claim shape. The ML model needs a complete feature vector, so every gap
// is filled with a fixed default rather than propagated as null. This stage
// never fails; required-field validation happens earlier, in the wizard.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/model"
)

// CategoricalDefaults is the fallback value for each categorical feature
// when the user left it unset.
var CategoricalDefaults = map[string]string{
	model.FieldAccidentType:      "Other",
	model.FieldVehicleType:       "Car",
	model.FieldWeatherConditions: "Normal",
	model.FieldAccidentLocation:  "Unknown",
	model.FieldInjuryPrognosis:   "6 months",
	model.FieldDominantInjury:    "Multiple",
	model.FieldGender:            "Other",
	model.FieldInjuryDescription: "Whiplash and minor bruising",
}

// Age and count fields default to plausible values instead of zero, which
// the model would read as a nonsensical input.
var countDefaults = map[string]float64{
	model.FieldDriverAge:          30,
	model.FieldVehicleAge:         5,
	model.FieldNumberOfPassengers: 1,
}

const dateLayout = "2006-01-02"

// now is swapped out in tests.
var now = time.Now

// ClaimData produces the complete normalized feature map for one claim.
// Total over all inputs, including the empty mapping.
func ClaimData(fields model.FieldValues) map[string]any {
	data := make(map[string]any)

	for name, def := range CategoricalDefaults {
		data[name] = categorical(fields[name], def)
	}

	for _, name := range model.BooleanFields {
		data[name] = fields[name] == true
	}

	for _, name := range model.SpecialDamageFields {
		data[name] = Numeric(fields[name])
	}
	data[model.FieldSpecialReduction] = Numeric(fields[model.FieldSpecialReduction])
	for _, name := range model.GeneralDamageFields {
		data[name] = Numeric(fields[name])
	}

	for name, def := range countDefaults {
		data[name] = count(fields[name], def)
	}

	data[model.FieldAccidentDate] = Date(fields[model.FieldAccidentDate])

	return data
}

// Payload assembles the final claim submission from the normalized field
// data and a verified prediction record. The amount is always the ML
// settlement figure, never a locally computed total.
func Payload(fields model.FieldValues, rec *model.PredictionRecord, output map[string]any) *model.ClaimPayload {
	data := ClaimData(fields)
	return &model.ClaimPayload{
		Title:       fmt.Sprintf("Claim - %s - %s", data[model.FieldAccidentType], data[model.FieldAccidentDate]),
		Description: categorical(fields[model.FieldInjuryDescription], CategoricalDefaults[model.FieldInjuryDescription]),
		Amount:      rec.SettlementAmount,
		ClaimData:   data,
		MLPrediction: &model.MLPredictionEcho{
			PredictionRecord: *rec,
			Input:            data,
			Output:           output,
		},
		Status: model.ClaimStatusPendingReview,
	}
}

// Numeric coerces a monetary or numeric field to float64; unparsable or
// absent values become 0.
func Numeric(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Date renders the incident date as YYYY-MM-DD. Absent or unparsable
// values fall back to the current date; the wizard has already validated
// presence, so the fallback firing indicates stale state and is logged.
func Date(v any) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format(dateLayout)
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range []string{dateLayout, time.RFC3339, "02/01/2006"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(dateLayout)
			}
		}
	}
	zap.L().Debug("format: accident date missing or unparsable, defaulting to today")
	return now().Format(dateLayout)
}

func categorical(v any, def string) string {
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return def
}

func count(v any, def float64) float64 {
	switch v.(type) {
	case nil:
		return def
	case string:
		if strings.TrimSpace(v.(string)) == "" {
			return def
		}
	}
	if n := Numeric(v); n > 0 {
		return n
	}
	return def
}
