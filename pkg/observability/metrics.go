package observability

import (
	"context"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot collectors.
type Metrics struct {
	Turns         *prometheus.CounterVec
	TurnDuration  *prometheus.HistogramVec
	StepVisits    *prometheus.CounterVec
	PromptRejects *prometheus.CounterVec
	DialogsEnded  *prometheus.CounterVec
	EmailsSent    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebot_turns_total",
				Help: "Total number of processed activities",
			},
			[]string{"activity_type", "status"},
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simplebot_turn_duration_seconds",
				Help:    "Duration of turn processing",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"activity_type"},
		),
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebot_step_visits_total",
				Help: "Total number of waterfall step executions",
			},
			[]string{"dialog_id", "step"},
		),
		PromptRejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebot_prompt_rejections_total",
				Help: "Total number of replies rejected by a prompt validator",
			},
			[]string{"prompt_id"},
		),
		DialogsEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebot_dialogs_ended_total",
				Help: "Total number of dialog runs that completed or were cancelled",
			},
			[]string{"dialog_id", "status"},
		),
		EmailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebot_emails_total",
				Help: "Total number of email send attempts",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.Turns, m.TurnDuration, m.StepVisits, m.PromptRejects, m.DialogsEnded, m.EmailsSent)
	return m
}

// Hooks returns lifecycle callbacks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			status := string(e.Status)
			if e.Err != nil {
				status = "error"
			}
			m.Turns.WithLabelValues(string(e.ActivityType), status).Inc()
			m.TurnDuration.WithLabelValues(string(e.ActivityType)).Observe(e.Duration.Seconds())
		},
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.DialogID, e.StepName).Inc()
		},
		OnPromptRejected: func(ctx context.Context, e *domain.PromptEvent) {
			m.PromptRejects.WithLabelValues(e.PromptID).Inc()
		},
		OnDialogEnd: func(ctx context.Context, e *domain.DialogEvent) {
			m.DialogsEnded.WithLabelValues(e.DialogID, string(e.Status)).Inc()
		},
		OnEmailSent: func(ctx context.Context, e *domain.EmailEvent) {
			result := "ok"
			if e.IsError {
				result = "error"
			}
			m.EmailsSent.WithLabelValues(result).Inc()
		},
	}
}
