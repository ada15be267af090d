package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise/pkg/domain"
)

// LoggingHooks logs step failures at warn and everything else at debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "run started", "steps", e.StepCount)
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "run completed", "steps", e.StepCount, "failed", e.Failed, "duration", e.Duration)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step done", "step_id", e.StepID, "position", e.Position, "duration", e.Duration)
		},
		OnStepError: func(ctx context.Context, e *domain.StepEvent) {
			logger.WarnContext(ctx, "step failed", "step_id", e.StepID, "title", e.Title, "position", e.Position, "err", e.Err)
		},
	}
}
