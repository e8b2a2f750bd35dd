package model

// SourceMLService is the provenance tag carried by every prediction that
// actually came from the ML service. Submission is refused for any record
// without it; no locally computed estimate may impersonate one.
const SourceMLService = "ml_service"

// PredictionStatus tracks the wizard's single in-flight prediction.
type PredictionStatus string

const (
	PredictionNone        PredictionStatus = "none"
	PredictionPending     PredictionStatus = "pending"
	PredictionReady       PredictionStatus = "ready"
	PredictionUnavailable PredictionStatus = "unavailable"
)

// SubmissionStatus tracks the final create-claim request.
type SubmissionStatus string

const (
	SubmissionIdle       SubmissionStatus = "idle"
	SubmissionSubmitting SubmissionStatus = "submitting"
	SubmissionSucceeded  SubmissionStatus = "succeeded"
	SubmissionFailed     SubmissionStatus = "failed"
)

// PredictionRecord is the validated settlement figure returned by the ML
// orchestrator. Immutable once created.
type PredictionRecord struct {
	SettlementAmount      float64 `json:"settlement_amount"`
	ConfidenceScore       float64 `json:"confidence_score"`
	Source                string  `json:"source"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds,omitempty"`
	Endpoint              string  `json:"endpoint,omitempty"`
	RequestID             string  `json:"request_id,omitempty"`
}

// Valid reports whether the record may gate a submission: a positive
// settlement amount sourced from the ML service.
func (r *PredictionRecord) Valid() bool {
	if r == nil {
		return false
	}
	return r.SettlementAmount > 0 && r.Source == SourceMLService
}
