package middleware

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/ports"
)

// Mask replaces every redacted value.
const Mask = "***"

// DefaultRedactPatterns hides the collected addresses.
var DefaultRedactPatterns = []string{`(?i)email`}

// ErrRedactedView is returned when writing through a redacting store.
var ErrRedactedView = errors.New("redacted state view is read-only")

type redactMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware returns a read-only view of a store whose loaded bags have
// the values of matching keys replaced by Mask, at any depth.
// Saving through the view would persist masks over real data, so Save fails.
func NewRedactionMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, key string, bag domain.Bag) error {
	return fmt.Errorf("save %s: %w", key, ErrRedactedView)
}

func (m *redactMiddleware) Load(ctx context.Context, key string) (domain.Bag, error) {
	bag, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	// Stores may hand out shared maps.
	cloned := bag.Clone()
	maskMap(cloned, m.patterns)
	return cloned, nil
}

func (m *redactMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}

		m[k] = maskValue(v, patterns)
	}
}

// maskValue copies slices so masking never writes through to a store's backing array.
func maskValue(v any, patterns []*regexp.Regexp) any {
	switch val := v.(type) {
	case map[string]any:
		maskMap(val, patterns)
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			if sub, ok := item.(map[string]any); ok {
				item = copyMap(sub)
			}
			out[i] = maskValue(item, patterns)
		}
		return out
	default:
		return v
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = copyMap(sub)
		}
		out[k] = v
	}
	return out
}
