package simplebot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/adapters/memory"
	"github.com/aretw0/simplebot/pkg/adapters/outbox"
	"github.com/aretw0/simplebot/pkg/bot"
	"github.com/aretw0/simplebot/pkg/dialog"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/email"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/aretw0/simplebot/pkg/session"
	"github.com/aretw0/simplebot/pkg/state"
	"github.com/aretw0/simplebot/pkg/turn"
)

// ErrorReplyText is appended to the replies of a turn that failed.
const ErrorReplyText = "Sorry, it looks like something went wrong."

// Property names inside the state bags.
const (
	UserProfileProperty = "UserProfile"
	DialogStateProperty = "DialogState"
)

// Bot is the high-level entry point: one call per inbound activity.
type Bot struct {
	router   *bot.Router
	dialogs  *dialog.Set
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
}

type settings struct {
	store       ports.StateStore
	sender      ports.EmailSender
	assets      ports.AssetLoader
	locker      ports.DistributedLocker
	welcomeCard string
	templateID  string
	subject     string
	greeting    string
	policy      dialog.Policy
	minLength   int
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option configures the Bot.
type Option func(*settings)

// WithStore sets the state store (default: in-memory).
func WithStore(store ports.StateStore) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithEmailSender sets the email sender (default: log only).
func WithEmailSender(sender ports.EmailSender) Option {
	return func(s *settings) {
		s.sender = sender
	}
}

// WithAssets sets the content loader used for the welcome card and the email template.
func WithAssets(assets ports.AssetLoader) Option {
	return func(s *settings) {
		s.assets = assets
	}
}

// WithWelcomeCard sends the asset with this id before the dialog starts.
func WithWelcomeCard(id string) Option {
	return func(s *settings) {
		s.welcomeCard = id
	}
}

// WithEmailTemplate renders the email body from the asset with this id.
func WithEmailTemplate(id string) Option {
	return func(s *settings) {
		s.templateID = id
	}
}

// WithEmailSubject overrides the email subject.
func WithEmailSubject(subject string) Option {
	return func(s *settings) {
		s.subject = subject
	}
}

// WithGreeting overrides the greeting sent for non-message activities.
func WithGreeting(text string) Option {
	return func(s *settings) {
		s.greeting = text
	}
}

// WithEmailPolicy selects the acceptance rule of the email prompt.
func WithEmailPolicy(policy dialog.Policy, minLength int) Option {
	return func(s *settings) {
		s.policy = policy
		s.minLength = minLength
	}
}

// WithLocker serializes turns across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *settings) {
		s.locker = locker
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New wires the bot.
func New(opts ...Option) (*Bot, error) {
	s := &settings{
		policy:    dialog.PolicyContainsAt,
		minLength: dialog.DefaultMinLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.sender == nil {
		s.sender = outbox.NewLogSender(s.logger)
	}

	users := state.NewUserState(s.store)
	conversations := state.NewConversationState(s.store)

	set := dialog.NewSet(
		state.NewProperty[domain.DialogState](conversations, DialogStateProperty),
		dialog.WithLogger(s.logger),
		dialog.WithHooks(s.hooks),
	)

	composerOpts := []email.Option{email.WithSubject(s.subject), email.WithLogger(s.logger)}
	if s.assets != nil && s.templateID != "" {
		composerOpts = append(composerOpts, email.WithTemplate(s.assets, s.templateID))
	}

	emailDialog := bot.NewEmailDialog(
		state.NewProperty[domain.UserProfile](users, UserProfileProperty),
		s.sender,
		bot.WithPolicy(s.policy, s.minLength),
		bot.WithComposer(email.NewComposer(composerOpts...)),
		bot.WithEmailHooks(s.hooks),
		bot.WithDialogLogger(s.logger),
	)
	if err := emailDialog.Register(set); err != nil {
		return nil, fmt.Errorf("register email dialog: %w", err)
	}

	routerOpts := []bot.Option{
		bot.WithStates(users, conversations),
		bot.WithLogger(s.logger),
	}
	if s.greeting != "" {
		routerOpts = append(routerOpts, bot.WithGreeting(s.greeting))
	}
	if s.assets != nil && s.welcomeCard != "" {
		routerOpts = append(routerOpts, bot.WithWelcomeCard(s.assets, s.welcomeCard))
	}

	sessionOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(s.locker))
	}

	return &Bot{
		router:   bot.NewRouter(set, bot.EmailDialogID, routerOpts...),
		dialogs:  set,
		sessions: session.NewManager(s.store, sessionOpts...),
		hooks:    s.hooks,
		logger:   s.logger,
	}, nil
}

// Dialogs exposes the registered waterfalls, for inspection and graphs.
func (b *Bot) Dialogs() *dialog.Set {
	return b.dialogs
}

// Sessions exposes the state administration API.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// ProcessActivity runs one turn and returns the replies to deliver.
// When the turn fails the error is logged, ErrorReplyText is appended to the
// replies and the error is returned; state is left as of the previous turn.
func (b *Bot) ProcessActivity(ctx context.Context, activity domain.Activity) ([]domain.Reply, error) {
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now()
	}
	tc := turn.New(activity)
	start := time.Now()

	var status domain.TurnStatus
	run := func(ctx context.Context) error {
		var err error
		status, err = b.router.OnTurn(ctx, tc)
		return err
	}

	var err error
	if key, scopeErr := state.ConversationScope(activity); scopeErr == nil {
		err = b.sessions.WithLock(ctx, key, run)
	} else {
		err = run(ctx)
	}

	if err != nil {
		b.logger.ErrorContext(ctx, "Turn failed",
			"conversation_id", activity.ConversationID,
			"activity_type", activity.Type,
			"err", err,
		)
		tc.SendText(ErrorReplyText)
	}

	if b.hooks.OnTurn != nil {
		b.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: domain.EventBase{
				Timestamp:      time.Now(),
				Type:           domain.EventTurn,
				ConversationID: activity.ConversationID,
			},
			ActivityType: activity.Type,
			Status:       status,
			Duration:     time.Since(start),
			Err:          err,
		})
	}

	return tc.Replies(), err
}
