package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/simplebot/pkg/adapters/memory"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	key := "test/users/u1"

	require.NoError(t, underlying.Save(ctx, key, domain.Bag{
		"UserProfile": map[string]any{"email": "a@b.com"},
		"DialogState": map[string]any{
			"active": map[string]any{"values": map[string]any{"Email": "c@d.com", "step": 2.0}},
		},
		"safe": "public",
	}))

	mw, err := middleware.NewRedactionMiddleware(middleware.DefaultRedactPatterns)
	require.NoError(t, err)
	view := mw(underlying)

	bag, err := view.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, bag["UserProfile"].(map[string]any)["email"])
	values := bag["DialogState"].(map[string]any)["active"].(map[string]any)["values"].(map[string]any)
	assert.Equal(t, middleware.Mask, values["Email"])
	assert.Equal(t, 2.0, values["step"])
	assert.Equal(t, "public", bag["safe"])

	raw, err := underlying.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", raw["UserProfile"].(map[string]any)["email"], "underlying data untouched")
}

func TestRedactionMiddleware_ReadOnly(t *testing.T) {
	mw, err := middleware.NewRedactionMiddleware(nil)
	require.NoError(t, err)
	view := mw(memory.NewStore())

	err = view.Save(context.Background(), "k", domain.Bag{})
	assert.ErrorIs(t, err, middleware.ErrRedactedView)

	_, err = view.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestRedactionMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewRedactionMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestRedactionMiddleware_MasksInsideLists(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	key := "test/users/u2"

	require.NoError(t, underlying.Save(ctx, key, domain.Bag{
		"Contacts": []any{
			map[string]any{"email": "a@b.com", "name": "a"},
			map[string]any{"nested": map[string]any{"Email": "c@d.com"}},
			"plain",
		},
	}))

	mw, err := middleware.NewRedactionMiddleware(middleware.DefaultRedactPatterns)
	require.NoError(t, err)

	bag, err := mw(underlying).Load(ctx, key)
	require.NoError(t, err)
	contacts := bag["Contacts"].([]any)
	require.Len(t, contacts, 3)
	assert.Equal(t, middleware.Mask, contacts[0].(map[string]any)["email"])
	assert.Equal(t, "a", contacts[0].(map[string]any)["name"])
	assert.Equal(t, middleware.Mask, contacts[1].(map[string]any)["nested"].(map[string]any)["Email"])
	assert.Equal(t, "plain", contacts[2])

	raw, err := underlying.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", raw["Contacts"].([]any)[0].(map[string]any)["email"], "underlying data untouched")
}
