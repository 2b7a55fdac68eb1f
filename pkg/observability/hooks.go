package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cardflow/pkg/domain"
)

// LogHooks logs run and step events. Steps are logged at debug level, runs at info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start", "graph_id", e.GraphID, "steps", e.Steps)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "run_end", "graph_id", e.GraphID, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "run_end", "graph_id", e.GraphID, "duration", e.Duration)
		},
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_start", "node_id", e.NodeID, "card_id", e.CardID)
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			if len(e.Errors) > 0 {
				logger.WarnContext(ctx, "step_end", "node_id", e.NodeID, "card_id", e.CardID, "duration", e.Duration, "errors", e.Errors)
				return
			}
			logger.DebugContext(ctx, "step_end", "node_id", e.NodeID, "card_id", e.CardID, "duration", e.Duration)
		},
	}
}

// MultiHooks calls every hook set in order.
func MultiHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			for _, s := range sets {
				if s.OnRunStart != nil {
					s.OnRunStart(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			for _, s := range sets {
				if s.OnRunEnd != nil {
					s.OnRunEnd(ctx, e)
				}
			}
		},
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			for _, s := range sets {
				if s.OnStepStart != nil {
					s.OnStepStart(ctx, e)
				}
			}
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			for _, s := range sets {
				if s.OnStepEnd != nil {
					s.OnStepEnd(ctx, e)
				}
			}
		},
	}
}
