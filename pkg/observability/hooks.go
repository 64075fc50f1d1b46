package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/quoteflow/pkg/domain"
)

// LoggingHooks logs every engine event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter", "step", e.StepID, "from", e.From, "direction", e.Direction)
		},
		OnStepSkip: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_skip", "step", e.StepID, "from", e.From, "direction", e.Direction)
		},
		OnNavigationError: func(ctx context.Context, e *domain.NavigationErrorEvent) {
			logger.ErrorContext(ctx, "navigation_error", "from", e.From, "direction", e.Direction, "error", e.Err)
		},
	}
}

// Combine fans every event out to all hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var enter, skip []func(context.Context, *domain.StepEvent)
	var navErr []func(context.Context, *domain.NavigationErrorEvent)
	for _, h := range sets {
		if h.OnStepEnter != nil {
			enter = append(enter, h.OnStepEnter)
		}
		if h.OnStepSkip != nil {
			skip = append(skip, h.OnStepSkip)
		}
		if h.OnNavigationError != nil {
			navErr = append(navErr, h.OnNavigationError)
		}
	}

	var out domain.LifecycleHooks
	if len(enter) > 0 {
		out.OnStepEnter = func(ctx context.Context, e *domain.StepEvent) {
			for _, fn := range enter {
				fn(ctx, e)
			}
		}
	}
	if len(skip) > 0 {
		out.OnStepSkip = func(ctx context.Context, e *domain.StepEvent) {
			for _, fn := range skip {
				fn(ctx, e)
			}
		}
	}
	if len(navErr) > 0 {
		out.OnNavigationError = func(ctx context.Context, e *domain.NavigationErrorEvent) {
			for _, fn := range navErr {
				fn(ctx, e)
			}
		}
	}
	return out
}
