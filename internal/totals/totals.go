// Package totals computes the financial summary shown on the wizard's
// financial step. All functions are pure and total: missing or non-numeric
// fields count as zero.
package totals

import (
	"strconv"
	"strings"

	"github.com/sells-group/claims-cli/internal/model"
)

// Breakdown holds the three derived financial figures.
type Breakdown struct {
	Special float64 `json:"special_total"`
	General float64 `json:"general_total"`
	Grand   float64 `json:"grand_total"`
}

// Compute derives all three totals in one pass.
func Compute(fields model.FieldValues) Breakdown {
	s := Special(fields)
	g := General(fields)
	return Breakdown{Special: s, General: g, Grand: s + g}
}

// Special sums the special-damages fields minus the reduction field,
// clamped at zero.
func Special(fields model.FieldValues) float64 {
	var sum float64
	for _, name := range model.SpecialDamageFields {
		sum += numeric(fields[name])
	}
	sum -= numeric(fields[model.FieldSpecialReduction])
	if sum < 0 {
		return 0
	}
	return sum
}

// General sums the general-damages fields.
func General(fields model.FieldValues) float64 {
	var sum float64
	for _, name := range model.GeneralDamageFields {
		sum += numeric(fields[name])
	}
	return sum
}

// Grand is Special plus General.
func Grand(fields model.FieldValues) float64 {
	return Special(fields) + General(fields)
}

func numeric(v any) float64 {
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
