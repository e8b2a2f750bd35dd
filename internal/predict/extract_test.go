package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claims-cli/internal/model"
)

func TestExtract_ShapePriority(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantAmount float64
		wantConf   float64
	}{
		{
			name:       "top_level",
			raw:        `{"settlement_amount": 1000, "confidence_score": 0.8}`,
			wantAmount: 1000,
			wantConf:   0.8,
		},
		{
			name:       "prediction_nested",
			raw:        `{"prediction": {"settlement_amount": 2000, "confidence_score": 0.6}}`,
			wantAmount: 2000,
			wantConf:   0.6,
		},
		{
			name:       "result_nested",
			raw:        `{"result": {"settlement_amount": 3000}}`,
			wantAmount: 3000,
			wantConf:   defaultConfidence,
		},
		{
			name:       "top_level_beats_nested",
			raw:        `{"settlement_amount": 10, "prediction": {"settlement_amount": 99}}`,
			wantAmount: 10,
			wantConf:   defaultConfidence,
		},
		{
			name:       "string_amount",
			raw:        `{"prediction": {"settlement_amount": "1250.50", "confidence_score": 0.9}}`,
			wantAmount: 1250.50,
			wantConf:   0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := extract([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, rec.SettlementAmount)
			assert.Equal(t, tt.wantConf, rec.ConfidenceScore)
			assert.Equal(t, model.SourceMLService, rec.Source)
			assert.True(t, rec.Valid())
		})
	}
}

func TestExtract_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no_known_shape", `{"outcome": {"value": 500}}`},
		{"zero_amount", `{"settlement_amount": 0}`},
		{"negative_amount", `{"settlement_amount": -12.5}`},
		{"non_numeric_amount", `{"settlement_amount": "soon"}`},
		{"empty_body", `{}`},
		{"not_json", `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := extract([]byte(tt.raw))
			assert.Error(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestExtract_ProcessingTime(t *testing.T) {
	rec, err := extract([]byte(`{"prediction": {"settlement_amount": 800, "processing_time_seconds": 1.25}}`))
	require.NoError(t, err)
	assert.Equal(t, 1.25, rec.ProcessingTimeSeconds)
}

func TestDecodeOutput(t *testing.T) {
	out := decodeOutput([]byte(`{"settlement_amount": 1}`))
	assert.Equal(t, 1.0, out["settlement_amount"])
	assert.Nil(t, decodeOutput([]byte(`not json`)))
}
