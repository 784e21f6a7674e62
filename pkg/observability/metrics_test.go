package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnTurn(ctx, &domain.TurnEvent{ActivityType: domain.ActivityMessage, Status: domain.TurnWaiting, Duration: 10 * time.Millisecond})
	hooks.OnTurn(ctx, &domain.TurnEvent{ActivityType: domain.ActivityMessage, Err: errors.New("boom")})
	hooks.OnStepEnter(ctx, &domain.StepEvent{DialogID: "simpleId", StepName: "PromptForEmail"})
	hooks.OnPromptRejected(ctx, &domain.PromptEvent{PromptID: "emailPrompt"})
	hooks.OnPromptRejected(ctx, &domain.PromptEvent{PromptID: "emailPrompt"})
	hooks.OnDialogEnd(ctx, &domain.DialogEvent{DialogID: "simpleId", Status: domain.TurnComplete})
	hooks.OnEmailSent(ctx, &domain.EmailEvent{})
	hooks.OnEmailSent(ctx, &domain.EmailEvent{IsError: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("message", "waiting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("message", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepVisits.WithLabelValues("simpleId", "PromptForEmail")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PromptRejects.WithLabelValues("emailPrompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DialogsEnded.WithLabelValues("simpleId", "complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TurnDuration))
}

func TestMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewMetrics(reg)
	assert.Panics(t, func() { observability.NewMetrics(reg) })
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()

	hooks.OnTurn(ctx, &domain.TurnEvent{EventBase: domain.EventBase{ConversationID: "c1"}, ActivityType: domain.ActivityMessage, Status: domain.TurnComplete})
	hooks.OnTurn(ctx, &domain.TurnEvent{EventBase: domain.EventBase{ConversationID: "c1"}, Err: errors.New("boom")})
	hooks.OnDialogEnd(ctx, &domain.DialogEvent{DialogID: "simpleId", Status: domain.TurnCancelled})

	out := buf.String()
	assert.Contains(t, out, "msg=turn ")
	assert.Contains(t, out, "status=complete")
	assert.Contains(t, out, "msg=turn_failed")
	assert.Contains(t, out, "err=boom")
	assert.Contains(t, out, "status=cancelled")
}
