package dialog

import (
	"fmt"
	"sort"

	"github.com/aretw0/simplebot/pkg/domain"
)

// event is an input of the run state machine.
type event string

const (
	evBegin   event = "begin"
	evAdvance event = "advance"
	evSuspend event = "suspend"
	evResume  event = "resume"
	evReject  event = "reject"
	evFinish  event = "finish"
	evEnd     event = "end"
	evCancel  event = "cancel"
)

var transitions = map[domain.Phase]map[event]domain.Phase{
	domain.PhaseIdle: {
		evBegin: domain.PhaseRunning,
	},
	domain.PhaseRunning: {
		evAdvance: domain.PhaseRunning,
		evSuspend: domain.PhaseWaiting,
		evFinish:  domain.PhaseComplete,
		evCancel:  domain.PhaseIdle,
	},
	domain.PhaseWaiting: {
		evResume: domain.PhaseRunning,
		evReject: domain.PhaseWaiting,
		evCancel: domain.PhaseIdle,
	},
	domain.PhaseComplete: {
		evEnd:    domain.PhaseIdle,
		evCancel: domain.PhaseIdle,
	},
}

// transition returns the phase reached from 'from' on ev.
func transition(from domain.Phase, ev event) (domain.Phase, error) {
	if from == "" {
		from = domain.PhaseIdle
	}
	to, ok := transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", domain.ErrInvalidTransition, ev, from)
	}
	return to, nil
}

// apply moves the run through ev.
func apply(run *domain.DialogRun, ev event) error {
	to, err := transition(run.Phase, ev)
	if err != nil {
		return fmt.Errorf("dialog %s: %w", run.DialogID, err)
	}
	run.Phase = to
	return nil
}

// Transition is one edge of the run state machine.
type Transition struct {
	From  domain.Phase
	Event string
	To    domain.Phase
}

var phaseOrder = map[domain.Phase]int{
	domain.PhaseIdle:     0,
	domain.PhaseRunning:  1,
	domain.PhaseWaiting:  2,
	domain.PhaseComplete: 3,
}

// Transitions lists every legal edge, ordered by source phase then event.
func Transitions() []Transition {
	var out []Transition
	for from, edges := range transitions {
		for ev, to := range edges {
			out = append(out, Transition{From: from, Event: string(ev), To: to})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return phaseOrder[out[i].From] < phaseOrder[out[j].From]
		}
		return out[i].Event < out[j].Event
	})
	return out
}
