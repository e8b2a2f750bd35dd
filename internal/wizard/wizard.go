// Package wizard owns the five-step claim submission flow: per-step
// required-field gating, the single-flight ML prediction triggered on
// review entry, and the one-shot submission that is refused until a
// verified ML-sourced settlement figure is present.
package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/format"
	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/predict"
	"github.com/sells-group/claims-cli/internal/totals"
	"github.com/sells-group/claims-cli/pkg/backend"
)

var (
	// ErrPredictionNotReady is returned by Submit while no valid prediction
	// record is present. No network request is made.
	ErrPredictionNotReady = eris.New("wizard: prediction not ready, submission refused")

	// ErrPredictionInFlight is returned by Regenerate while a prediction is
	// still pending.
	ErrPredictionInFlight = eris.New("wizard: prediction already in flight")

	// ErrSubmissionInFlight is returned by Submit while a previous
	// submission is still outstanding.
	ErrSubmissionInFlight = eris.New("wizard: submission already in flight")

	// ErrAlreadySubmitted is returned once a submission has succeeded.
	ErrAlreadySubmitted = eris.New("wizard: claim already submitted")

	// ErrAtFinalStep is returned by Next on the review step.
	ErrAtFinalStep = eris.New("wizard: already at final step")

	// ErrForwardJump is returned by Goto for forward skips.
	ErrForwardJump = eris.New("wizard: forward navigation must go through Next")
)

// Predictor resolves settlement predictions. *predict.Orchestrator
// satisfies it.
type Predictor interface {
	Predict(ctx context.Context, input map[string]any) (*predict.Result, error)
}

// Submitter issues claim creation requests. backend.Client satisfies it.
type Submitter interface {
	CreateClaim(ctx context.Context, payload *model.ClaimPayload) (*model.Claim, error)
	CreateFinanceClaim(ctx context.Context, payload *model.ClaimPayload) (*model.Claim, error)
}

// State is a point-in-time snapshot of a session.
type State struct {
	Step             Step                   `json:"step"`
	StepName         string                 `json:"step_name"`
	Fields           model.FieldValues      `json:"fields"`
	Totals           totals.Breakdown       `json:"totals"`
	PredictionStatus model.PredictionStatus `json:"prediction_status"`
	Prediction       *model.PredictionRecord `json:"prediction,omitempty"`
	PredictionError  string                 `json:"prediction_error,omitempty"`
	SubmissionStatus model.SubmissionStatus `json:"submission_status"`
	Claim            *model.Claim           `json:"claim,omitempty"`
}

// Session is one claim submission flow. All exported methods are safe for
// concurrent use; the session owns the only mutable state.
type Session struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	step   Step
	fields model.FieldValues
	sums   totals.Breakdown

	prediction *predict.Result
	predStatus model.PredictionStatus
	predErr    error
	predDone   chan struct{}
	epoch      uint64

	subStatus model.SubmissionStatus
	payload   *model.ClaimPayload
	claim     *model.Claim

	predictor Predictor
	submitter Submitter
}

// NewSession creates a session at the incident-details step.
func NewSession(p Predictor, sub Submitter) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ctx:        ctx,
		cancel:     cancel,
		fields:     make(model.FieldValues),
		predStatus: model.PredictionNone,
		subStatus:  model.SubmissionIdle,
		predictor:  p,
		submitter:  sub,
	}
}

// Close discards the session. In-flight prediction or submission
// resolutions are dropped rather than applied to discarded state.
func (s *Session) Close() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
	s.cancel()
}

// SetField records one field value. Totals are recomputed live while the
// user is on the financial step.
func (s *Session) SetField(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[name] = value
	if s.step == StepFinancialDetails {
		s.sums = totals.Compute(s.fields)
	}
}

// SetFields records a batch of field values.
func (s *Session) SetFields(values model.FieldValues) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, v := range values {
		s.fields[name] = v
	}
	if s.step == StepFinancialDetails {
		s.sums = totals.Compute(s.fields)
	}
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Next validates the current step's required fields and advances. Entry
// into review additionally re-validates the cross-step critical fields,
// recomputes totals, and triggers the prediction exactly once.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step >= StepReviewAndSubmit {
		return ErrAtFinalStep
	}
	if missing := missingFields(s.fields, requiredFields[s.step]); len(missing) > 0 {
		return &ValidationError{Step: s.step, Missing: missing}
	}

	next := s.step + 1
	if next == StepReviewAndSubmit {
		if missing := missingFields(s.fields, CriticalFields); len(missing) > 0 {
			return &ValidationError{Step: StepReviewAndSubmit, Missing: missing}
		}
		s.step = next
		s.sums = totals.Compute(s.fields)
		s.startPredictionLocked()
		return nil
	}

	s.step = next
	return nil
}

// Back moves to the previous step. Backward navigation is always allowed.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step > StepIncidentDetails {
		s.step--
	}
}

// Goto jumps to a prior step; forward jumps are refused.
func (s *Session) Goto(step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < StepIncidentDetails || step >= stepCount {
		return eris.Errorf("wizard: no such step %d", int(step))
	}
	if step > s.step {
		return ErrForwardJump
	}
	s.step = step
	return nil
}

// Regenerate discards the current prediction outcome and re-invokes the
// orchestrator. Only available once the prior call has resolved and no
// submission is outstanding: the in-flight submission carries the current
// prediction's payload, and superseding it would orphan the resolution.
func (s *Session) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.subStatus {
	case model.SubmissionSubmitting:
		return ErrSubmissionInFlight
	case model.SubmissionSucceeded:
		return ErrAlreadySubmitted
	}
	if s.predStatus != model.PredictionReady && s.predStatus != model.PredictionUnavailable {
		return ErrPredictionInFlight
	}
	s.startPredictionLocked()
	return nil
}

// WaitPrediction blocks until the in-flight prediction resolves (or ctx
// is done) and returns the resulting status. The returned error is the
// orchestrator's terminal error when the status is unavailable.
func (s *Session) WaitPrediction(ctx context.Context) (model.PredictionStatus, error) {
	s.mu.Lock()
	status := s.predStatus
	done := s.predDone
	s.mu.Unlock()

	if status != model.PredictionPending || done == nil {
		return status, s.predictionErr()
	}
	select {
	case <-ctx.Done():
		return model.PredictionPending, ctx.Err()
	case <-done:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predStatus, s.predErr
}

func (s *Session) predictionErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predErr
}

// Prediction returns the current record, nil until READY.
func (s *Session) Prediction() *model.PredictionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prediction == nil {
		return nil
	}
	return s.prediction.Record
}

// Submit issues the one create-claim request. Refused without a network
// call unless the prediction is READY; when refused and no prediction is
// pending, a fresh prediction is triggered instead. A finance-path retry
// with the identical payload is attempted only when the primary path
// rejects the claim.
func (s *Session) Submit(ctx context.Context) (*model.Claim, error) {
	s.mu.Lock()

	switch s.subStatus {
	case model.SubmissionSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case model.SubmissionSucceeded:
		claim := s.claim
		s.mu.Unlock()
		return claim, ErrAlreadySubmitted
	}

	if s.predStatus != model.PredictionReady {
		if s.predStatus != model.PredictionPending {
			s.startPredictionLocked()
		}
		s.mu.Unlock()
		return nil, ErrPredictionNotReady
	}

	// Defense in depth against stale state: the critical fields gate both
	// review entry and the final submit.
	if missing := missingFields(s.fields, CriticalFields); len(missing) > 0 {
		s.mu.Unlock()
		return nil, &ValidationError{Step: StepReviewAndSubmit, Missing: missing}
	}

	if !s.prediction.Record.Valid() {
		s.mu.Unlock()
		return nil, ErrPredictionNotReady
	}

	if s.payload == nil {
		s.payload = format.Payload(s.fields, s.prediction.Record, s.prediction.Output)
	}
	payload := s.payload
	epoch := s.epoch
	s.subStatus = model.SubmissionSubmitting
	s.mu.Unlock()

	claim, err := s.submitter.CreateClaim(ctx, payload)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			zap.L().Warn("wizard: primary claim path rejected, trying finance path",
				zap.Int("status", apiErr.StatusCode),
				zap.String("detail", apiErr.Detail),
			)
			if financeClaim, financeErr := s.submitter.CreateFinanceClaim(ctx, payload); financeErr == nil {
				claim, err = financeClaim, nil
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// Session was reset or closed mid-flight; drop the resolution but
		// leave the status resolvable rather than stuck at SUBMITTING.
		s.subStatus = model.SubmissionFailed
		return nil, eris.New("wizard: session discarded during submission")
	}
	if err != nil {
		s.subStatus = model.SubmissionFailed
		return nil, eris.Wrap(err, "wizard: submission failed")
	}
	s.subStatus = model.SubmissionSucceeded
	s.claim = claim
	zap.L().Info("wizard: claim submitted",
		zap.String("claim_id", claim.ID),
		zap.Float64("amount", claim.Amount),
	)
	return claim, nil
}

// State returns a snapshot for display.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make(model.FieldValues, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	st := State{
		Step:             s.step,
		StepName:         s.step.String(),
		Fields:           fields,
		Totals:           s.sums,
		PredictionStatus: s.predStatus,
		SubmissionStatus: s.subStatus,
		Claim:            s.claim,
	}
	if s.prediction != nil {
		st.Prediction = s.prediction.Record
	}
	if s.predErr != nil {
		st.PredictionError = s.predErr.Error()
	}
	return st
}

// startPredictionLocked clears any stale prediction and launches a fresh
// orchestrator call. No-op while one is already pending, which is what
// makes the flow single-flight. Caller holds s.mu.
func (s *Session) startPredictionLocked() {
	if s.predStatus == model.PredictionPending {
		return
	}

	s.prediction = nil
	s.predErr = nil
	s.payload = nil
	s.predStatus = model.PredictionPending
	s.epoch++
	epoch := s.epoch
	done := make(chan struct{})
	s.predDone = done

	input := format.ClaimData(s.fields)

	go func() {
		res, err := s.predictor.Predict(s.ctx, input)

		s.mu.Lock()
		defer s.mu.Unlock()
		defer close(done)
		if epoch != s.epoch {
			// A reset or Close superseded this call; its resolution must
			// not touch the session.
			return
		}
		if err != nil {
			s.predErr = err
			s.predStatus = model.PredictionUnavailable
			return
		}
		s.prediction = res
		s.predStatus = model.PredictionReady
	}()
}
