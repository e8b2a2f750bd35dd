// Package predict orchestrates settlement predictions across the direct ML
// service and the backend-proxied fallback endpoints. The first endpoint
// and attempt to yield a valid record wins; if every source is exhausted
// the prediction fails terminally — no placeholder figure is ever
// synthesized.
package predict

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/resilience"
	"github.com/sells-group/claims-cli/pkg/backend"
	"github.com/sells-group/claims-cli/pkg/mlservice"
)

// ErrServiceUnavailable is the terminal error after every endpoint has
// exhausted its retries. Callers block submission on it; they must not
// substitute a local estimate.
var ErrServiceUnavailable = eris.New("predict: ml service unavailable")

// EventKind classifies advisory progress notifications.
type EventKind string

const (
	EventProcessing EventKind = "processing"
	EventRetrying   EventKind = "retrying"
	EventFallback   EventKind = "fallback"
	EventFailed     EventKind = "failed"
)

// Event is an advisory progress notification for the UI layer. Purely
// observational; not part of the prediction contract.
type Event struct {
	Kind     EventKind
	Endpoint string
	Attempt  int
}

// Notifier receives advisory events.
type Notifier func(Event)

// Result is a winning prediction plus the decoded raw response it came
// from, for the payload's audit echo.
type Result struct {
	Record *model.PredictionRecord
	Output map[string]any
}

// DefaultFallbackPaths is the fixed priority order of backend-proxied ML
// endpoints: primary, backup, legacy.
var DefaultFallbackPaths = []string{
	"/ml/models/predict/",
	"/ml/predict/robust/",
	"/api/ml/predict",
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithFallbackPaths overrides the proxied endpoint order.
func WithFallbackPaths(paths []string) Option {
	return func(o *Orchestrator) {
		if len(paths) > 0 {
			o.paths = paths
		}
	}
}

// WithRetryConfig overrides the per-endpoint retry settings.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(o *Orchestrator) {
		o.retry = cfg
	}
}

// WithNotifier installs an advisory event sink.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notify = n
	}
}

// WithRequestIDs overrides request id generation (tests).
func WithRequestIDs(gen func() string) Option {
	return func(o *Orchestrator) {
		o.newID = gen
	}
}

// Orchestrator issues predictions. One invocation is strictly sequential:
// no parallel endpoint racing, so "first valid wins" stays deterministic.
// Callers guarantee at most one outstanding Predict per wizard session.
type Orchestrator struct {
	ml      mlservice.Client
	backend backend.Client
	paths   []string
	retry   resilience.RetryConfig
	notify  Notifier
	newID   func() string
}

// New creates an orchestrator. ml may be nil when no direct service is
// configured; the proxied fallbacks are then the only sources.
func New(ml mlservice.Client, be backend.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ml:      ml,
		backend: be,
		paths:   DefaultFallbackPaths,
		retry:   resilience.DefaultRetryConfig(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Predict resolves a settlement prediction for the given input vector, or
// fails with ErrServiceUnavailable once every source is exhausted.
func (o *Orchestrator) Predict(ctx context.Context, input map[string]any) (*Result, error) {
	requestID := o.newID()
	log := zap.L().With(zap.String("request_id", requestID))
	req := mlservice.PredictRequest{InputData: input, RequestID: requestID}

	o.emit(Event{Kind: EventProcessing})

	// Direct service first, one shot.
	if o.ml != nil {
		res, err := o.direct(ctx, req, requestID)
		if err == nil {
			log.Info("predict: direct service succeeded",
				zap.Float64("settlement_amount", res.Record.SettlementAmount))
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "predict: cancelled")
		}
		log.Warn("predict: direct service failed, falling back to proxied endpoints", zap.Error(err))
	}

	// Proxied fallbacks, in fixed order, bounded retries per endpoint.
	for _, path := range o.paths {
		o.emit(Event{Kind: EventFallback, Endpoint: path})

		cfg := o.retry
		cfg.ShouldRetry = resilience.RetryAll
		cfg.OnRetry = func(attempt int, err error) {
			o.emit(Event{Kind: EventRetrying, Endpoint: path, Attempt: attempt})
			log.Warn("predict: retrying endpoint",
				zap.String("endpoint", path),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}

		res, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*Result, error) {
			raw, callErr := o.backend.ProxyPredict(ctx, path, req)
			if callErr != nil {
				return nil, callErr
			}
			return buildResult(raw, path, requestID)
		})
		if err == nil {
			log.Info("predict: endpoint succeeded",
				zap.String("endpoint", path),
				zap.Float64("settlement_amount", res.Record.SettlementAmount))
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "predict: cancelled")
		}
		log.Warn("predict: endpoint exhausted", zap.String("endpoint", path), zap.Error(err))
	}

	o.emit(Event{Kind: EventFailed})
	log.Error("predict: all endpoints exhausted")
	return nil, ErrServiceUnavailable
}

func (o *Orchestrator) direct(ctx context.Context, req mlservice.PredictRequest, requestID string) (*Result, error) {
	raw, err := o.ml.Predict(ctx, req)
	if err != nil {
		return nil, err
	}
	return buildResult(raw, "direct", requestID)
}

func buildResult(raw []byte, endpoint, requestID string) (*Result, error) {
	rec, err := extract(raw)
	if err != nil {
		return nil, err
	}
	rec.Endpoint = endpoint
	rec.RequestID = requestID
	return &Result{Record: rec, Output: decodeOutput(raw)}, nil
}

func (o *Orchestrator) emit(e Event) {
	if o.notify != nil {
		o.notify(e)
	}
}
