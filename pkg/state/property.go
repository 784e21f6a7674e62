package state

import (
	"context"
	"fmt"

	"github.com/aretw0/simplebot/pkg/turn"
	"github.com/mitchellh/mapstructure"
)

// Property is a typed accessor for one entry of a BotState bag.
type Property[T any] struct {
	state *BotState
	name  string
}

// NewProperty creates an accessor for the named property.
func NewProperty[T any](s *BotState, name string) *Property[T] {
	return &Property[T]{state: s, name: name}
}

// Name returns the property name.
func (p *Property[T]) Name() string {
	return p.name
}

// Lookup returns the value and whether it was present.
// Values read back from a store are plain maps and are decoded into T.
func (p *Property[T]) Lookup(ctx context.Context, tc *turn.Context) (T, bool, error) {
	var zero T

	c, err := p.state.bag(ctx, tc)
	if err != nil {
		return zero, false, err
	}

	raw, ok := c.bag[p.name]
	if !ok || raw == nil {
		return zero, false, nil
	}

	switch v := raw.(type) {
	case T:
		return v, true, nil
	case *T:
		if v == nil {
			return zero, false, nil
		}
		return *v, true, nil
	}

	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return zero, false, err
	}
	if err := decoder.Decode(raw); err != nil {
		return zero, false, fmt.Errorf("decode property %s: %w", p.name, err)
	}

	// Keep the typed value so later reads in this turn skip decoding.
	c.bag[p.name] = out
	return out, true, nil
}

// Get returns the value. When absent and def is not nil, def() is stored and returned.
// When absent and def is nil, the zero value is returned without being stored.
func (p *Property[T]) Get(ctx context.Context, tc *turn.Context, def func() T) (T, error) {
	v, ok, err := p.Lookup(ctx, tc)
	if err != nil || ok {
		return v, err
	}
	if def == nil {
		return v, nil
	}
	v = def()
	if err := p.Set(ctx, tc, v); err != nil {
		return v, err
	}
	return v, nil
}

// Set stores the value in the turn cache. It is persisted by BotState.SaveChanges.
func (p *Property[T]) Set(ctx context.Context, tc *turn.Context, v T) error {
	c, err := p.state.bag(ctx, tc)
	if err != nil {
		return err
	}
	c.bag[p.name] = v
	return nil
}

// Delete removes the property from the turn cache.
func (p *Property[T]) Delete(ctx context.Context, tc *turn.Context) error {
	c, err := p.state.bag(ctx, tc)
	if err != nil {
		return err
	}
	delete(c.bag, p.name)
	return nil
}
