package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/dialog"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/aretw0/simplebot/pkg/state"
	"github.com/aretw0/simplebot/pkg/turn"
)

// GreetingText answers every non-message activity.
const GreetingText = "Hello! I am a simple bot implemented with the Microsoft Bot Framework"

// Router is the per-activity dispatcher.
type Router struct {
	set      *dialog.Set
	dialogID string
	states   []*state.BotState

	greeting string
	cards    ports.AssetLoader
	cardID   string

	logger *slog.Logger
}

// Option configures the Router.
type Option func(*Router)

// WithGreeting overrides GreetingText.
func WithGreeting(text string) Option {
	return func(r *Router) {
		r.greeting = text
	}
}

// WithWelcomeCard sends the card before the dialog starts. An empty id disables it.
func WithWelcomeCard(assets ports.AssetLoader, id string) Option {
	return func(r *Router) {
		r.cards = assets
		r.cardID = id
	}
}

// WithStates registers the states flushed at the end of each turn.
func WithStates(states ...*state.BotState) Option {
	return func(r *Router) {
		r.states = append(r.states, states...)
	}
}

// WithLogger configures a logger for the Router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a router that starts dialogID on new conversations.
func NewRouter(set *dialog.Set, dialogID string, opts ...Option) *Router {
	r := &Router{
		set:      set,
		dialogID: dialogID,
		greeting: GreetingText,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnTurn handles one activity and flushes the registered states.
// Unexpected dialog statuses are resolved by cancelling, never by failing the turn.
// On error nothing is flushed, so the stored state stays at the previous turn.
func (r *Router) OnTurn(ctx context.Context, tc *turn.Context) (domain.TurnStatus, error) {
	status, err := r.route(ctx, tc)
	if err != nil {
		return status, err
	}

	for _, s := range r.states {
		if err := s.SaveChanges(ctx, tc, false); err != nil {
			return status, err
		}
	}
	return status, nil
}

func (r *Router) route(ctx context.Context, tc *turn.Context) (domain.TurnStatus, error) {
	if !tc.Activity.IsMessage() {
		tc.SendText(r.greeting)
		return domain.TurnEmpty, nil
	}

	dc, err := r.set.CreateContext(ctx, tc)
	if err != nil {
		return "", err
	}

	res, err := dc.Continue(ctx)
	if err != nil {
		return "", err
	}

	switch res.Status {
	case domain.TurnEmpty:
		if tc.Responded() {
			return res.Status, nil
		}
		r.sendWelcomeCard(ctx, tc)
		res, err = dc.Begin(ctx, r.dialogID, nil)
		if err != nil {
			return "", err
		}
		if res.Status == domain.TurnComplete {
			// Waterfall finished without suspending.
			if err := dc.End(ctx); err != nil {
				return "", err
			}
		}
		return res.Status, nil

	case domain.TurnWaiting:
		return res.Status, nil

	case domain.TurnComplete:
		if err := dc.End(ctx); err != nil {
			return "", err
		}
		return res.Status, nil

	default:
		r.logger.Warn("Unexpected dialog status, cancelling", "status", res.Status, "conversation_id", tc.Activity.ConversationID)
		res, err = dc.CancelAll(ctx)
		if err != nil {
			return "", fmt.Errorf("cancel dialogs: %w", err)
		}
		return res.Status, nil
	}
}

// sendWelcomeCard is best effort: a missing or broken card never blocks the dialog.
func (r *Router) sendWelcomeCard(ctx context.Context, tc *turn.Context) {
	if r.cards == nil || r.cardID == "" {
		return
	}
	att, err := LoadCard(ctx, r.cards, r.cardID)
	if err != nil {
		r.logger.Warn("Welcome card unavailable", "card", r.cardID, "err", err)
		return
	}
	tc.SendAttachment(att)
}
