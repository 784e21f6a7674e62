package dialog

import (
	"context"
	"strings"

	"github.com/aretw0/simplebot/pkg/turn"
)

// PromptOptions is what a step asks a prompt to show.
type PromptOptions struct {
	Text  string
	Retry string // Sent on rejection when the validator stays silent; defaults to Text
}

// PromptValidatorContext is handed to a Validator for each reply.
type PromptValidatorContext struct {
	Turn       *turn.Context
	Recognized string // Trimmed reply text, empty if none
	Succeeded  bool   // False when the activity carried no text
	Attempts   int    // Replies received so far, this one included
	Options    PromptOptions
}

// Validator decides whether a recognized reply is accepted.
type Validator func(ctx context.Context, pc *PromptValidatorContext) (bool, error)

// TextPrompt asks for free text and waits until a reply is accepted.
type TextPrompt struct {
	id        string
	validator Validator
}

// NewTextPrompt creates a prompt. A nil validator accepts any recognized text.
func NewTextPrompt(id string, validator Validator) *TextPrompt {
	return &TextPrompt{id: id, validator: validator}
}

// ID returns the prompt id.
func (p *TextPrompt) ID() string {
	return p.id
}

// recognize extracts the reply from a message activity.
func (p *TextPrompt) recognize(tc *turn.Context) (string, bool) {
	if !tc.Activity.IsMessage() {
		return "", false
	}
	return strings.TrimSpace(tc.Activity.Text), true
}

// validate runs the validator over the current reply.
func (p *TextPrompt) validate(ctx context.Context, tc *turn.Context, attempts int, opts PromptOptions) (string, bool, error) {
	text, ok := p.recognize(tc)
	if p.validator == nil {
		return text, ok, nil
	}
	accepted, err := p.validator(ctx, &PromptValidatorContext{
		Turn:       tc,
		Recognized: text,
		Succeeded:  ok,
		Attempts:   attempts,
		Options:    opts,
	})
	if err != nil {
		return "", false, err
	}
	return text, accepted, nil
}
