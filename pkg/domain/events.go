package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn           EventType = "turn"
	EventStepEnter      EventType = "step_enter"
	EventPromptRejected EventType = "prompt_rejected"
	EventDialogEnd      EventType = "dialog_end"
	EventEmailSent      EventType = "email_sent"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
}

// TurnEvent is emitted once per processed activity.
type TurnEvent struct {
	EventBase
	ActivityType ActivityType  `json:"activity_type"`
	Status       TurnStatus    `json:"status,omitempty"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
}

// StepEvent is emitted when a waterfall step starts.
type StepEvent struct {
	EventBase
	DialogID string `json:"dialog_id"`
	Step     int    `json:"step"`
	StepName string `json:"step_name"`
}

// PromptEvent is emitted when a reply is rejected by a prompt validator.
type PromptEvent struct {
	EventBase
	PromptID string `json:"prompt_id"`
	Attempts int    `json:"attempts"`
}

// DialogEvent is emitted when a run leaves the stack (ended or cancelled).
type DialogEvent struct {
	EventBase
	DialogID string     `json:"dialog_id"`
	Status   TurnStatus `json:"status"`
}

// EmailEvent is emitted after the email sender has been invoked.
type EmailEvent struct {
	EventBase
	IsError bool `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for bot observability.
type LifecycleHooks struct {
	OnTurn           func(context.Context, *TurnEvent)
	OnStepEnter      func(context.Context, *StepEvent)
	OnPromptRejected func(context.Context, *PromptEvent)
	OnDialogEnd      func(context.Context, *DialogEvent)
	OnEmailSent      func(context.Context, *EmailEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurn:           chain(h.OnTurn, other.OnTurn),
		OnStepEnter:      chain(h.OnStepEnter, other.OnStepEnter),
		OnPromptRejected: chain(h.OnPromptRejected, other.OnPromptRejected),
		OnDialogEnd:      chain(h.OnDialogEnd, other.OnDialogEnd),
		OnEmailSent:      chain(h.OnEmailSent, other.OnEmailSent),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
