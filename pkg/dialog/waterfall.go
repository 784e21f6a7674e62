package dialog

import (
	"context"

	"github.com/aretw0/simplebot/pkg/turn"
)

// StepFunc runs one waterfall step and tells the sequencer what to do next.
type StepFunc func(ctx context.Context, sc *StepContext) (StepResult, error)

// Step is a named waterfall step.
// Prompt names the prompt the step may suspend on; it is descriptive only.
type Step struct {
	Name   string
	Prompt string
	Run    StepFunc
}

// Waterfall is an ordered, resumable sequence of steps.
type Waterfall struct {
	id    string
	steps []Step
}

// NewWaterfall creates a waterfall.
func NewWaterfall(id string, steps ...Step) *Waterfall {
	return &Waterfall{id: id, steps: steps}
}

// ID returns the waterfall id.
func (w *Waterfall) ID() string {
	return w.id
}

// Steps returns the step names in order.
func (w *Waterfall) Steps() []string {
	names := make([]string, len(w.steps))
	for i, s := range w.steps {
		names[i] = s.Name
	}
	return names
}

// Prompts returns, aligned with Steps, the prompt each step may suspend on.
func (w *Waterfall) Prompts() []string {
	ids := make([]string, len(w.steps))
	for i, s := range w.steps {
		ids[i] = s.Prompt
	}
	return ids
}

// StepContext is passed to each step.
type StepContext struct {
	Turn    *turn.Context
	Index   int
	Name    string
	Options map[string]any // Passed to Begin, kept for the whole run
	Values  map[string]any // Shared by the steps of the run
	Result  any            // Result of the previous step or the accepted prompt reply
}

type resultKind int

const (
	resultNext resultKind = iota
	resultPrompt
	resultEnd
)

// StepResult is the instruction returned by a step.
type StepResult struct {
	kind     resultKind
	value    any
	promptID string
	prompt   PromptOptions
}

// Next advances to the following step in the same turn, handing it v.
func (sc *StepContext) Next(v any) StepResult {
	return StepResult{kind: resultNext, value: v}
}

// Prompt sends the prompt text and suspends the run until a reply is accepted.
func (sc *StepContext) Prompt(promptID string, opts PromptOptions) StepResult {
	return StepResult{kind: resultPrompt, promptID: promptID, prompt: opts}
}

// End completes the run with v as its result.
func (sc *StepContext) End(v any) StepResult {
	return StepResult{kind: resultEnd, value: v}
}
