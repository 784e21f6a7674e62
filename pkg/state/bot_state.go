package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/aretw0/simplebot/pkg/turn"
)

// BotState is a scoped view over a StateStore with a per-turn cache.
type BotState struct {
	name  string
	store ports.StateStore
	key   KeyFunc
}

// cachedBag is the turn-local copy of a scope's bag.
type cachedBag struct {
	key  string
	bag  domain.Bag
	hash string
}

// New creates a BotState with a custom scope.
// name must be unique among the states used in one turn.
func New(name string, store ports.StateStore, key KeyFunc) *BotState {
	return &BotState{name: name, store: store, key: key}
}

// NewUserState creates the user-scoped state.
func NewUserState(store ports.StateStore) *BotState {
	return New("UserState", store, UserScope)
}

// NewConversationState creates the conversation-scoped state.
func NewConversationState(store ports.StateStore) *BotState {
	return New("ConversationState", store, ConversationScope)
}

// Name returns the state name.
func (s *BotState) Name() string {
	return s.name
}

func (s *BotState) cacheKey() string {
	return "state." + s.name
}

// Load reads the bag into the turn cache. A missing bag starts empty.
// When force is false an already loaded bag is kept.
func (s *BotState) Load(ctx context.Context, tc *turn.Context, force bool) error {
	if !force {
		if _, ok := tc.Value(s.cacheKey()); ok {
			return nil
		}
	}

	key, err := s.key(tc.Activity)
	if err != nil {
		return err
	}

	bag, err := s.store.Load(ctx, key)
	switch {
	case errors.Is(err, domain.ErrStateNotFound):
		bag = domain.Bag{}
	case err != nil:
		return fmt.Errorf("load %s: %w", s.name, err)
	}

	hash, err := fingerprint(bag)
	if err != nil {
		return err
	}
	tc.SetValue(s.cacheKey(), &cachedBag{key: key, bag: bag, hash: hash})
	return nil
}

// SaveChanges flushes the cached bag when it changed since it was loaded, or when force is set.
func (s *BotState) SaveChanges(ctx context.Context, tc *turn.Context, force bool) error {
	cached, ok := s.cached(tc)
	if !ok {
		return nil // Never touched this turn
	}

	hash, err := fingerprint(cached.bag)
	if err != nil {
		return err
	}
	if !force && hash == cached.hash {
		return nil
	}

	if err := s.store.Save(ctx, cached.key, cached.bag); err != nil {
		return fmt.Errorf("save %s: %w", s.name, err)
	}
	cached.hash = hash
	return nil
}

// Clear empties the cached bag; the store is only updated on the next SaveChanges.
func (s *BotState) Clear(ctx context.Context, tc *turn.Context) error {
	c, err := s.bag(ctx, tc)
	if err != nil {
		return err
	}
	for k := range c.bag {
		delete(c.bag, k)
	}
	return nil
}

// Delete removes the scope's bag from the store and the turn cache.
func (s *BotState) Delete(ctx context.Context, tc *turn.Context) error {
	key, err := s.key(tc.Activity)
	if err != nil {
		return err
	}
	tc.SetValue(s.cacheKey(), &cachedBag{key: key, bag: domain.Bag{}, hash: emptyHash})
	return s.store.Delete(ctx, key)
}

func (s *BotState) cached(tc *turn.Context) (*cachedBag, bool) {
	v, ok := tc.Value(s.cacheKey())
	if !ok {
		return nil, false
	}
	c, ok := v.(*cachedBag)
	return c, ok
}

// bag returns the cached bag, loading it on first use.
func (s *BotState) bag(ctx context.Context, tc *turn.Context) (*cachedBag, error) {
	if c, ok := s.cached(tc); ok {
		return c, nil
	}
	if err := s.Load(ctx, tc, false); err != nil {
		return nil, err
	}
	c, _ := s.cached(tc)
	return c, nil
}

const emptyHash = "{}"

func fingerprint(bag domain.Bag) (string, error) {
	if len(bag) == 0 {
		return emptyHash, nil
	}
	data, err := json.Marshal(bag)
	if err != nil {
		return "", fmt.Errorf("fingerprint state: %w", err)
	}
	return string(data), nil
}
