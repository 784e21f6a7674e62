package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/dialog"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/email"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/aretw0/simplebot/pkg/state"
	"github.com/mitchellh/mapstructure"
)

const (
	// EmailDialogID is the id of the email waterfall.
	EmailDialogID = "simpleId"
	// EmailPromptID is the id of the email prompt.
	EmailPromptID = "emailPrompt"

	// PromptEmailText asks the user for their address.
	PromptEmailText = "Would you please give me your email?"
)

// ConfirmationText is sent once the email went out.
func ConfirmationText(address string) string {
	return fmt.Sprintf("Thanks! I've sent a nifty email at %s! If you don't get it within a few minutes I hit my limit for the day!", address)
}

// EmailDialog collects and validates an address, stores it in the user profile and sends an email to it.
type EmailDialog struct {
	profile   *state.Property[domain.UserProfile]
	sender    ports.EmailSender
	composer  *email.Composer
	policy    dialog.Policy
	minLength int
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// EmailDialogOption configures the EmailDialog.
type EmailDialogOption func(*EmailDialog)

// WithPolicy selects the acceptance rule of the email prompt.
func WithPolicy(policy dialog.Policy, minLength int) EmailDialogOption {
	return func(d *EmailDialog) {
		d.policy = policy
		d.minLength = minLength
	}
}

// WithComposer replaces the default email composer.
func WithComposer(c *email.Composer) EmailDialogOption {
	return func(d *EmailDialog) {
		d.composer = c
	}
}

// WithEmailHooks registers the OnEmailSent callback (other hooks are ignored here).
func WithEmailHooks(hooks domain.LifecycleHooks) EmailDialogOption {
	return func(d *EmailDialog) {
		d.hooks = d.hooks.Merge(domain.LifecycleHooks{OnEmailSent: hooks.OnEmailSent})
	}
}

// WithDialogLogger configures a logger for the EmailDialog.
func WithDialogLogger(logger *slog.Logger) EmailDialogOption {
	return func(d *EmailDialog) {
		d.logger = logger
	}
}

// NewEmailDialog creates the email dialog over the user profile property.
func NewEmailDialog(profile *state.Property[domain.UserProfile], sender ports.EmailSender, opts ...EmailDialogOption) *EmailDialog {
	d := &EmailDialog{
		profile:   profile,
		sender:    sender,
		composer:  email.NewComposer(),
		policy:    dialog.PolicyContainsAt,
		minLength: dialog.DefaultMinLength,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds the waterfall and its prompt to the set.
func (d *EmailDialog) Register(set *dialog.Set) error {
	if err := set.AddPrompt(dialog.NewTextPrompt(EmailPromptID, dialog.EmailValidator(d.policy, d.minLength))); err != nil {
		return err
	}
	return set.Add(dialog.NewWaterfall(EmailDialogID,
		dialog.Step{Name: "InitializeState", Run: d.initializeState},
		dialog.Step{Name: "PromptForEmail", Prompt: EmailPromptID, Run: d.promptForEmail},
		dialog.Step{Name: "Finalize", Run: d.finalize},
	))
}

// ProfileOptions builds Begin options that seed a missing profile.
func ProfileOptions(p domain.UserProfile) map[string]any {
	return map[string]any{"email": p.Email}
}

// initializeState makes sure the user has a profile, seeding it from the options when given.
func (d *EmailDialog) initializeState(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	_, ok, err := d.profile.Lookup(ctx, sc.Turn)
	if err != nil {
		return dialog.StepResult{}, err
	}
	if !ok {
		seed, err := profileFromOptions(sc.Options)
		if err != nil {
			return dialog.StepResult{}, err
		}
		if err := d.profile.Set(ctx, sc.Turn, seed); err != nil {
			return dialog.StepResult{}, err
		}
	}
	return sc.Next(nil), nil
}

// promptForEmail always re-collects the address: a stored one is cleared first.
func (d *EmailDialog) promptForEmail(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	p, err := d.profile.Get(ctx, sc.Turn, newProfile)
	if err != nil {
		return dialog.StepResult{}, err
	}

	if p.Email != "" {
		d.logger.Debug("Clearing stored email before prompting", "conversation_id", sc.Turn.Activity.ConversationID)
		p.Email = ""
		if err := d.profile.Set(ctx, sc.Turn, p); err != nil {
			return dialog.StepResult{}, err
		}
	}

	if p.Email == "" {
		return sc.Prompt(EmailPromptID, dialog.PromptOptions{Text: PromptEmailText}), nil
	}
	return sc.Next(nil), nil
}

// finalize stores the accepted address, sends the email and confirms.
func (d *EmailDialog) finalize(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	p, err := d.profile.Get(ctx, sc.Turn, newProfile)
	if err != nil {
		return dialog.StepResult{}, err
	}

	if reply, ok := sc.Result.(string); ok && p.Email == "" && reply != "" {
		p.Email = reply
		if err := d.profile.Set(ctx, sc.Turn, p); err != nil {
			return dialog.StepResult{}, err
		}
	}

	body, err := d.composer.Body(ctx)
	if err != nil {
		return dialog.StepResult{}, err
	}

	sendErr := d.sender.Send(ctx, p.Email, d.composer.Subject(), body)
	if d.hooks.OnEmailSent != nil {
		d.hooks.OnEmailSent(ctx, &domain.EmailEvent{
			EventBase: domain.EventBase{
				Timestamp:      time.Now(),
				Type:           domain.EventEmailSent,
				ConversationID: sc.Turn.Activity.ConversationID,
			},
			IsError: sendErr != nil,
		})
	}
	if sendErr != nil {
		return dialog.StepResult{}, fmt.Errorf("send email: %w", sendErr)
	}

	sc.Turn.SendText(ConfirmationText(p.Email))
	return sc.End(p.Email), nil
}

func newProfile() domain.UserProfile {
	return domain.UserProfile{}
}

func profileFromOptions(options map[string]any) (domain.UserProfile, error) {
	var p domain.UserProfile
	if len(options) == 0 {
		return p, nil
	}
	if err := mapstructure.WeakDecode(options, &p); err != nil {
		return p, fmt.Errorf("decode profile options: %w", err)
	}
	return p, nil
}
