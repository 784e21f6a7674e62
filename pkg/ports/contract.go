package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	key := "contract/users/" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		bag := domain.Bag{
			"UserProfile": map[string]any{"email": "a@b.com"},
			"count":       42,
		}

		err := store.Save(ctx, key, bag)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		profile, ok := loaded["UserProfile"].(map[string]any)
		require.True(t, ok, "nested records come back as maps")
		assert.Equal(t, "a@b.com", profile["email"])
		// JSON backed stores turn ints into float64; only existence is part of the contract.
		assert.NotNil(t, loaded["count"])
	})

	t.Run("Loaded bag is isolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.Bag{"UserProfile": map[string]any{"email": "x@y.z"}}))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded["UserProfile"].(map[string]any)["email"] = "mutated"

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "x@y.z", again["UserProfile"].(map[string]any)["email"])
	})

	t.Run("Last write wins", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, domain.Bag{"v": "first"}))
		require.NoError(t, store.Save(ctx, key, domain.Bag{"v": "second"}))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", loaded["v"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent/"+key)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, domain.Bag{"v": 1})
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrStateNotFound, "Load after Delete should return ErrStateNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, domain.Bag{})
		_ = store.Save(ctx, id2, domain.Bag{})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}
