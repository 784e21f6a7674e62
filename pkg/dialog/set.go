package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/state"
	"github.com/aretw0/simplebot/pkg/turn"
)

// Set holds the registered waterfalls and prompts and the property the runs are persisted in.
type Set struct {
	dialogs   *state.Property[domain.DialogState]
	waterfall map[string]*Waterfall
	prompts   map[string]*TextPrompt
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// Option configures the Set.
type Option func(*Set)

// WithLogger configures a logger for the Set.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Set) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Set) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// NewSet creates a Set persisting runs through the given property.
func NewSet(dialogs *state.Property[domain.DialogState], opts ...Option) *Set {
	s := &Set{
		dialogs:   dialogs,
		waterfall: make(map[string]*Waterfall),
		prompts:   make(map[string]*TextPrompt),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a waterfall.
func (s *Set) Add(w *Waterfall) error {
	if _, exists := s.waterfall[w.id]; exists {
		return fmt.Errorf("dialog %q already registered", w.id)
	}
	if _, exists := s.prompts[w.id]; exists {
		return fmt.Errorf("dialog %q clashes with a prompt", w.id)
	}
	s.waterfall[w.id] = w
	return nil
}

// AddPrompt registers a prompt.
func (s *Set) AddPrompt(p *TextPrompt) error {
	if _, exists := s.prompts[p.id]; exists {
		return fmt.Errorf("prompt %q already registered", p.id)
	}
	if _, exists := s.waterfall[p.id]; exists {
		return fmt.Errorf("prompt %q clashes with a dialog", p.id)
	}
	s.prompts[p.id] = p
	return nil
}

// CreateContext loads the conversation's DialogState for this turn.
func (s *Set) CreateContext(ctx context.Context, tc *turn.Context) (*Context, error) {
	ds, err := s.dialogs.Get(ctx, tc, func() domain.DialogState { return domain.DialogState{} })
	if err != nil {
		return nil, fmt.Errorf("load dialog state: %w", err)
	}
	return &Context{set: s, tc: tc, state: ds}, nil
}

// Waterfall returns a registered waterfall.
func (s *Set) Waterfall(id string) (*Waterfall, bool) {
	w, ok := s.waterfall[id]
	return w, ok
}

// Dialogs returns the ids of the registered waterfalls, sorted.
func (s *Set) Dialogs() []string {
	ids := make([]string, 0, len(s.waterfall))
	for id := range s.waterfall {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
