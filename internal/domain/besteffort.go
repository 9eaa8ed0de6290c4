package domain

import (
	"context"
	"log/slog"
)

// BestEffort runs a fallible operation and absorbs its failure: on error
// it logs a warning and returns the fallback value. It is the single
// degradation path for soft-failure call sites (web search, sports API
// calls, cache writes) so one source failing never aborts another.
func BestEffort[T any](ctx context.Context, log *slog.Logger, op string, fallback T, fn func(context.Context) (T, error)) T {
	out, err := fn(ctx)
	if err != nil {
		log.Warn("best-effort operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return fallback
	}
	return out
}

// BestEffortRun is the value-less variant, used for writes.
func BestEffortRun(ctx context.Context, log *slog.Logger, op string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Warn("best-effort operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
	}
}
