package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sells-group/claims-cli/internal/predict"
	"github.com/sells-group/claims-cli/internal/registry"
	"github.com/sells-group/claims-cli/internal/resilience"
	"github.com/sells-group/claims-cli/pkg/backend"
	"github.com/sells-group/claims-cli/pkg/mlservice"
)

// initBackend builds the backend client from config plus token overrides
// from the environment.
func initBackend() backend.Client {
	tokens := backend.Tokens{
		Access:  cfg.API.Token,
		Refresh: cfg.API.RefreshToken,
	}
	if v := os.Getenv("CLAIMS_API_TOKEN"); v != "" {
		tokens.Access = v
	}
	if v := os.Getenv("CLAIMS_API_REFRESH_TOKEN"); v != "" {
		tokens.Refresh = v
	}

	return backend.NewClient(cfg.API.BaseURL,
		backend.WithTokens(tokens),
		backend.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
	)
}

// initOrchestrator builds the prediction orchestrator. The direct ML
// client is only wired when an API key is configured; otherwise the
// proxied fallback endpoints are the only sources.
func initOrchestrator(be backend.Client, opts ...predict.Option) *predict.Orchestrator {
	var ml mlservice.Client
	if cfg.ML.APIKey != "" {
		ml = mlservice.NewClient(cfg.ML.BaseURL, cfg.ML.APIKey)
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.ML.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.ML.MaxAttempts
	}
	if cfg.ML.RetryDelaySecs > 0 {
		retry.Delay = cfg.ML.RetryDelay()
	}

	opts = append([]predict.Option{
		predict.WithFallbackPaths(cfg.ML.FallbackPaths),
		predict.WithRetryConfig(retry),
	}, opts...)
	return predict.New(ml, be, opts...)
}

// initRegistry opens the invoice registry named by config.
func initRegistry(ctx context.Context) (registry.Registry, error) {
	switch cfg.Registry.Driver {
	case "sqlite", "":
		return registry.NewSQLite(cfg.Registry.DSN)
	case "postgres":
		return registry.NewPostgres(ctx, cfg.Registry.DSN)
	case "memory":
		return registry.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown registry driver %q", cfg.Registry.Driver)
	}
}

var gbp = message.NewPrinter(language.BritishEnglish)

// formatAmount renders a settlement figure as grouped pounds.
func formatAmount(v float64) string {
	return gbp.Sprintf("£%v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// progressNotifier prints orchestrator progress to stderr so long retry
// sequences do not look like a hang.
func progressNotifier(e predict.Event) {
	switch e.Kind {
	case predict.EventProcessing:
		fmt.Fprintln(os.Stderr, "Resolving settlement prediction...")
	case predict.EventFallback:
		fmt.Fprintf(os.Stderr, "Trying endpoint %s\n", e.Endpoint)
	case predict.EventRetrying:
		fmt.Fprintf(os.Stderr, "  retry %d on %s\n", e.Attempt, e.Endpoint)
	case predict.EventFailed:
		fmt.Fprintln(os.Stderr, "Prediction service unavailable.")
	}
}
