package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/simplebot/pkg/domain"
)

// LogHooks returns lifecycle callbacks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "turn_failed",
					"conversation_id", e.ConversationID,
					"activity_type", e.ActivityType,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "turn",
				"conversation_id", e.ConversationID,
				"activity_type", e.ActivityType,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter", "conversation_id", e.ConversationID, "dialog_id", e.DialogID, "step", e.StepName)
		},
		OnPromptRejected: func(ctx context.Context, e *domain.PromptEvent) {
			logger.InfoContext(ctx, "prompt_rejected", "conversation_id", e.ConversationID, "prompt_id", e.PromptID, "attempts", e.Attempts)
		},
		OnDialogEnd: func(ctx context.Context, e *domain.DialogEvent) {
			logger.InfoContext(ctx, "dialog_end", "conversation_id", e.ConversationID, "dialog_id", e.DialogID, "status", e.Status)
		},
		OnEmailSent: func(ctx context.Context, e *domain.EmailEvent) {
			logger.InfoContext(ctx, "email_sent", "conversation_id", e.ConversationID, "is_error", e.IsError)
		},
	}
}
