package predict

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/normalize"
)

// defaultConfidence is used when the upstream response omits a confidence
// score.
const defaultConfidence = 0.85

// shape locates the settlement fields within one known response nesting.
type shape struct {
	name       string
	amount     string
	confidence string
	procTime   string
}

// shapes is the fixed probe order: top level first, then the prediction
// wrapper, then the legacy result wrapper. First shape that carries an
// amount wins; later shapes are not consulted.
var shapes = []shape{
	{name: "top_level", amount: "settlement_amount", confidence: "confidence_score", procTime: "processing_time_seconds"},
	{name: "prediction", amount: "prediction.settlement_amount", confidence: "prediction.confidence_score", procTime: "prediction.processing_time_seconds"},
	{name: "result", amount: "result.settlement_amount", confidence: "result.confidence_score", procTime: "result.processing_time_seconds"},
}

// extract probes the known response shapes and builds a validated
// prediction record. A found but non-positive amount fails the attempt
// rather than producing a bad record.
func extract(raw []byte) (*model.PredictionRecord, error) {
	for _, s := range shapes {
		amount, ok := normalize.Number(raw, s.amount)
		if !ok {
			continue
		}
		if amount <= 0 {
			return nil, eris.Errorf("predict: %s shape carries non-positive settlement amount %v", s.name, amount)
		}

		rec := &model.PredictionRecord{
			SettlementAmount: amount,
			ConfidenceScore:  defaultConfidence,
			Source:           model.SourceMLService,
		}
		if conf, ok := normalize.Number(raw, s.confidence); ok {
			rec.ConfidenceScore = conf
		}
		if secs, ok := normalize.Number(raw, s.procTime); ok {
			rec.ProcessingTimeSeconds = secs
		}
		return rec, nil
	}
	return nil, eris.New("predict: no known response shape carries a settlement amount")
}

// decodeOutput decodes the winning raw response for the payload's audit
// echo. A body that fails to decode is echoed as nil rather than failing
// the prediction.
func decodeOutput(raw []byte) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
