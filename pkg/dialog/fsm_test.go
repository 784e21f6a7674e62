package dialog

import (
	"testing"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    domain.Phase
		ev      event
		want    domain.Phase
		invalid bool
	}{
		{from: domain.PhaseIdle, ev: evBegin, want: domain.PhaseRunning},
		{from: "", ev: evBegin, want: domain.PhaseRunning},
		{from: domain.PhaseRunning, ev: evAdvance, want: domain.PhaseRunning},
		{from: domain.PhaseRunning, ev: evSuspend, want: domain.PhaseWaiting},
		{from: domain.PhaseRunning, ev: evFinish, want: domain.PhaseComplete},
		{from: domain.PhaseWaiting, ev: evResume, want: domain.PhaseRunning},
		{from: domain.PhaseWaiting, ev: evReject, want: domain.PhaseWaiting},
		{from: domain.PhaseWaiting, ev: evCancel, want: domain.PhaseIdle},
		{from: domain.PhaseComplete, ev: evEnd, want: domain.PhaseIdle},
		{from: domain.PhaseComplete, ev: evCancel, want: domain.PhaseIdle},

		{from: domain.PhaseIdle, ev: evCancel, invalid: true},
		{from: domain.PhaseIdle, ev: evEnd, invalid: true},
		{from: domain.PhaseWaiting, ev: evEnd, invalid: true},
		{from: domain.PhaseWaiting, ev: evFinish, invalid: true},
		{from: domain.PhaseComplete, ev: evBegin, invalid: true},
		{from: domain.PhaseRunning, ev: evResume, invalid: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := transition(tt.from, tt.ev)
			if tt.invalid {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitions_ListsEveryEdge(t *testing.T) {
	edges := Transitions()
	assert.Len(t, edges, 10)
	assert.Equal(t, Transition{From: domain.PhaseIdle, Event: "begin", To: domain.PhaseRunning}, edges[0])

	for _, e := range edges {
		got, err := transition(e.From, event(e.Event))
		assert.NoError(t, err)
		assert.Equal(t, e.To, got)
	}
}
