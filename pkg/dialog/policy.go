package dialog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/simplebot/pkg/domain"
)

// Policy selects the acceptance rule of the email prompt.
type Policy string

const (
	// PolicyContainsAt accepts any reply containing '@'.
	PolicyContainsAt Policy = "contains-at"
	// PolicyMinLength accepts any reply with more characters than the configured minimum.
	PolicyMinLength Policy = "min-length"
)

// DefaultMinLength is the threshold of PolicyMinLength: replies must be longer than it.
const DefaultMinLength = 5

// RetryEmailText is sent when the email prompt rejects a reply.
const RetryEmailText = "Your email needs to be in the format of text@domain.com"

// ParsePolicy resolves a policy name. The empty name selects PolicyContainsAt.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyContainsAt:
		return PolicyContainsAt, nil
	case PolicyMinLength:
		return PolicyMinLength, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownPolicy, name)
	}
}

// Accepts reports whether text passes the policy.
func (p Policy) Accepts(text string, minLength int) bool {
	switch p {
	case PolicyMinLength:
		return utf8.RuneCountInString(text) > minLength
	default:
		return strings.Contains(text, "@")
	}
}

// EmailValidator returns the prompt validator for the email step.
// A rejected reply is answered with RetryEmailText and the prompt keeps waiting.
func EmailValidator(policy Policy, minLength int) Validator {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return func(ctx context.Context, pc *PromptValidatorContext) (bool, error) {
		if pc.Succeeded && policy.Accepts(pc.Recognized, minLength) {
			return true, nil
		}
		pc.Turn.SendText(RetryEmailText)
		return false, nil
	}
}
