package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tortuga/pkg/domain"
)

// LoggingHooks logs every lifecycle event at Debug, and failed requests at
// Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnApply: func(ctx context.Context, e *domain.ApplyEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "request failed",
					"turtle_id", e.TurtleID,
					"request", e.Request,
					"err", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "request applied",
				"turtle_id", e.TurtleID,
				"request", e.Request,
				"command", e.Command,
				"duration", e.Duration,
			)
		},
		OnUndo: func(ctx context.Context, e *domain.UndoEvent) {
			logger.DebugContext(ctx, "undo",
				"turtle_id", e.TurtleID,
				"request", e.Request,
				"remaining", e.Remaining,
			)
		},
		OnInput: func(ctx context.Context, e *domain.InputEvent) {
			logger.DebugContext(ctx, "input answered",
				"turtle_id", e.TurtleID,
				"kind", e.Kind,
				"cancelled", e.Cancelled,
				"wait", e.Wait,
			)
		},
	}
}

// Chain fans every event out to each set of hooks in order. Nil callbacks
// are skipped.
func Chain(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnApply: func(ctx context.Context, e *domain.ApplyEvent) {
			for _, h := range all {
				if h.OnApply != nil {
					h.OnApply(ctx, e)
				}
			}
		},
		OnUndo: func(ctx context.Context, e *domain.UndoEvent) {
			for _, h := range all {
				if h.OnUndo != nil {
					h.OnUndo(ctx, e)
				}
			}
		},
		OnInput: func(ctx context.Context, e *domain.InputEvent) {
			for _, h := range all {
				if h.OnInput != nil {
					h.OnInput(ctx, e)
				}
			}
		},
	}
}
