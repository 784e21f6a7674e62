package dialog

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/turn"
)

// Context drives the conversation's run for one turn.
type Context struct {
	set   *Set
	tc    *turn.Context
	state domain.DialogState
}

// Phase returns the phase of the active run.
func (dc *Context) Phase() domain.Phase {
	return dc.state.Phase()
}

// Active returns the active run, or nil.
func (dc *Context) Active() *domain.DialogRun {
	return dc.state.Active
}

// Continue resumes the active run with the turn's activity.
func (dc *Context) Continue(ctx context.Context) (domain.TurnResult, error) {
	run := dc.state.Active
	if run == nil {
		return domain.TurnResult{Status: domain.TurnEmpty}, nil
	}

	switch run.Phase {
	case domain.PhaseWaiting:
		return dc.resume(ctx, run)
	case domain.PhaseComplete:
		// Finished in a turn that never acknowledged it.
		if err := dc.End(ctx); err != nil {
			return domain.TurnResult{}, err
		}
		return domain.TurnResult{Status: domain.TurnEmpty}, nil
	default:
		// A run left mid-step by an interrupted turn; the caller decides.
		dc.set.logger.Warn("Dialog found mid-step", "dialog_id", run.DialogID, "step", run.Step, "phase", run.Phase)
		return domain.TurnResult{Status: domain.TurnRunning}, nil
	}
}

// Begin starts a registered waterfall. Any run already in place is ended or cancelled first.
func (dc *Context) Begin(ctx context.Context, dialogID string, options map[string]any) (domain.TurnResult, error) {
	w, ok := dc.set.waterfall[dialogID]
	if !ok {
		return domain.TurnResult{}, fmt.Errorf("%w: %s", domain.ErrDialogNotFound, dialogID)
	}

	if dc.state.Active != nil {
		var err error
		if dc.state.Active.Phase == domain.PhaseComplete {
			err = dc.End(ctx)
		} else {
			_, err = dc.CancelAll(ctx)
		}
		if err != nil {
			return domain.TurnResult{}, err
		}
	}

	run := &domain.DialogRun{
		DialogID: dialogID,
		Phase:    domain.PhaseIdle,
		Options:  options,
		Values:   make(map[string]any),
	}
	if err := apply(run, evBegin); err != nil {
		return domain.TurnResult{}, err
	}
	dc.state.Active = run
	dc.set.logger.Debug("Dialog started", "dialog_id", dialogID)

	return dc.runSteps(ctx, w, run, nil)
}

// End clears a completed run. It is a no-op when no run is active.
func (dc *Context) End(ctx context.Context) error {
	run := dc.state.Active
	if run == nil {
		return nil
	}
	if err := apply(run, evEnd); err != nil {
		return err
	}
	dc.state.Active = nil
	return dc.save(ctx)
}

// CancelAll abandons the active run. State persisted by its steps is kept.
func (dc *Context) CancelAll(ctx context.Context) (domain.TurnResult, error) {
	run := dc.state.Active
	if run == nil {
		return domain.TurnResult{Status: domain.TurnEmpty}, nil
	}
	if err := apply(run, evCancel); err != nil {
		return domain.TurnResult{}, err
	}
	dc.state.Active = nil
	if err := dc.save(ctx); err != nil {
		return domain.TurnResult{}, err
	}

	dc.set.logger.Info("Dialog cancelled", "dialog_id", run.DialogID, "step", run.Step)
	dc.dialogEnd(ctx, run.DialogID, domain.TurnCancelled)
	return domain.TurnResult{Status: domain.TurnCancelled}, nil
}

func (dc *Context) resume(ctx context.Context, run *domain.DialogRun) (domain.TurnResult, error) {
	w, ok := dc.set.waterfall[run.DialogID]
	if !ok {
		return domain.TurnResult{}, fmt.Errorf("%w: %s", domain.ErrDialogNotFound, run.DialogID)
	}
	if run.Pending == nil {
		return domain.TurnResult{}, fmt.Errorf("dialog %s: waiting without a prompt: %w", run.DialogID, domain.ErrInvalidTransition)
	}
	p, ok := dc.set.prompts[run.Pending.PromptID]
	if !ok {
		return domain.TurnResult{}, fmt.Errorf("%w: %s", domain.ErrPromptNotFound, run.Pending.PromptID)
	}

	run.Pending.Attempts++
	opts := PromptOptions{Text: run.Pending.Text, Retry: run.Pending.Retry}
	reply, accepted, err := p.validate(ctx, dc.tc, run.Pending.Attempts, opts)
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("prompt %s: %w", p.id, err)
	}

	if !accepted {
		if err := apply(run, evReject); err != nil {
			return domain.TurnResult{}, err
		}
		if dc.set.hooks.OnPromptRejected != nil {
			dc.set.hooks.OnPromptRejected(ctx, &domain.PromptEvent{
				EventBase: dc.base(domain.EventPromptRejected),
				PromptID:  p.id,
				Attempts:  run.Pending.Attempts,
			})
		}
		if !dc.tc.Responded() {
			retry := opts.Retry
			if retry == "" {
				retry = opts.Text
			}
			dc.tc.SendText(retry)
		}
		if err := dc.save(ctx); err != nil {
			return domain.TurnResult{}, err
		}
		return domain.TurnResult{Status: domain.TurnWaiting}, nil
	}

	if err := apply(run, evResume); err != nil {
		return domain.TurnResult{}, err
	}
	run.Pending = nil
	run.Step++
	return dc.runSteps(ctx, w, run, reply)
}

// runSteps executes steps from run.Step until one suspends or the run finishes.
func (dc *Context) runSteps(ctx context.Context, w *Waterfall, run *domain.DialogRun, result any) (domain.TurnResult, error) {
	for {
		if run.Step >= len(w.steps) {
			return dc.finish(ctx, run, result)
		}

		step := w.steps[run.Step]
		if dc.set.hooks.OnStepEnter != nil {
			dc.set.hooks.OnStepEnter(ctx, &domain.StepEvent{
				EventBase: dc.base(domain.EventStepEnter),
				DialogID:  run.DialogID,
				Step:      run.Step,
				StepName:  step.Name,
			})
		}

		sc := &StepContext{
			Turn:    dc.tc,
			Index:   run.Step,
			Name:    step.Name,
			Options: run.Options,
			Values:  run.Values,
			Result:  result,
		}
		res, err := step.Run(ctx, sc)
		if err != nil {
			return domain.TurnResult{}, fmt.Errorf("dialog %s step %s: %w", run.DialogID, step.Name, err)
		}

		switch res.kind {
		case resultNext:
			if err := apply(run, evAdvance); err != nil {
				return domain.TurnResult{}, err
			}
			run.Step++
			result = res.value

		case resultPrompt:
			if _, ok := dc.set.prompts[res.promptID]; !ok {
				return domain.TurnResult{}, fmt.Errorf("%w: %s", domain.ErrPromptNotFound, res.promptID)
			}
			if err := apply(run, evSuspend); err != nil {
				return domain.TurnResult{}, err
			}
			run.Pending = &domain.Continuation{
				PromptID: res.promptID,
				Text:     res.prompt.Text,
				Retry:    res.prompt.Retry,
			}
			if res.prompt.Text != "" {
				dc.tc.SendText(res.prompt.Text)
			}
			if err := dc.save(ctx); err != nil {
				return domain.TurnResult{}, err
			}
			return domain.TurnResult{Status: domain.TurnWaiting}, nil

		case resultEnd:
			return dc.finish(ctx, run, res.value)
		}
	}
}

func (dc *Context) finish(ctx context.Context, run *domain.DialogRun, result any) (domain.TurnResult, error) {
	if err := apply(run, evFinish); err != nil {
		return domain.TurnResult{}, err
	}
	run.Pending = nil
	run.Result = result
	if err := dc.save(ctx); err != nil {
		return domain.TurnResult{}, err
	}

	dc.set.logger.Debug("Dialog completed", "dialog_id", run.DialogID)
	dc.dialogEnd(ctx, run.DialogID, domain.TurnComplete)
	return domain.TurnResult{Status: domain.TurnComplete, Result: result}, nil
}

func (dc *Context) save(ctx context.Context) error {
	return dc.set.dialogs.Set(ctx, dc.tc, dc.state)
}

func (dc *Context) dialogEnd(ctx context.Context, dialogID string, status domain.TurnStatus) {
	if dc.set.hooks.OnDialogEnd == nil {
		return
	}
	dc.set.hooks.OnDialogEnd(ctx, &domain.DialogEvent{
		EventBase: dc.base(domain.EventDialogEnd),
		DialogID:  dialogID,
		Status:    status,
	})
}

func (dc *Context) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:      time.Now(),
		Type:           t,
		ConversationID: dc.tc.Activity.ConversationID,
	}
}
