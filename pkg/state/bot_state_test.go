package state_test

import (
	"context"
	"testing"

	"github.com/aretw0/simplebot/pkg/adapters/memory"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/aretw0/simplebot/pkg/state"
	"github.com/aretw0/simplebot/pkg/turn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(text string) domain.Activity {
	return domain.Activity{
		Type:           domain.ActivityMessage,
		ChannelID:      "test",
		ConversationID: "conv-1",
		UserID:         "user-1",
		Text:           text,
	}
}

// countingStore records how many times Save reached the backend.
type countingStore struct {
	ports.StateStore
	saves int
}

func (s *countingStore) Save(ctx context.Context, key string, bag domain.Bag) error {
	s.saves++
	return s.StateStore.Save(ctx, key, bag)
}

func TestScopes(t *testing.T) {
	key, err := state.UserScope(message(""))
	require.NoError(t, err)
	assert.Equal(t, "test/users/user-1", key)

	key, err = state.ConversationScope(message(""))
	require.NoError(t, err)
	assert.Equal(t, "test/conversations/conv-1", key)

	_, err = state.UserScope(domain.Activity{ChannelID: "test"})
	assert.ErrorIs(t, err, domain.ErrMissingScope)

	_, err = state.ConversationScope(domain.Activity{UserID: "u"})
	assert.ErrorIs(t, err, domain.ErrMissingScope)
}

func TestBotState_SaveChanges(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{StateStore: memory.NewStore()}
	users := state.NewUserState(store)
	profile := state.NewProperty[domain.UserProfile](users, "UserProfile")

	t.Run("Untouched state is not saved", func(t *testing.T) {
		tc := turn.New(message("hi"))
		require.NoError(t, users.SaveChanges(ctx, tc, false))
		assert.Equal(t, 0, store.saves)
	})

	t.Run("Read-only turn is not saved", func(t *testing.T) {
		tc := turn.New(message("hi"))
		_, ok, err := profile.Lookup(ctx, tc)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, users.SaveChanges(ctx, tc, false))
		assert.Equal(t, 0, store.saves)
	})

	t.Run("Changes are flushed once", func(t *testing.T) {
		tc := turn.New(message("hi"))
		require.NoError(t, profile.Set(ctx, tc, domain.UserProfile{Email: "a@b.com"}))
		require.NoError(t, users.SaveChanges(ctx, tc, false))
		require.NoError(t, users.SaveChanges(ctx, tc, false))
		assert.Equal(t, 1, store.saves)

		bag, err := store.Load(ctx, "test/users/user-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"email": "a@b.com"}, bag["UserProfile"])
	})

	t.Run("Force saves unchanged state", func(t *testing.T) {
		tc := turn.New(message("hi"))
		require.NoError(t, users.Load(ctx, tc, false))
		require.NoError(t, users.SaveChanges(ctx, tc, true))
		assert.Equal(t, 2, store.saves)
	})
}

func TestBotState_ClearAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	users := state.NewUserState(store)
	profile := state.NewProperty[domain.UserProfile](users, "UserProfile")

	tc := turn.New(message("hi"))
	require.NoError(t, profile.Set(ctx, tc, domain.UserProfile{Email: "a@b.com"}))
	require.NoError(t, users.SaveChanges(ctx, tc, false))

	tc = turn.New(message("hi"))
	require.NoError(t, users.Clear(ctx, tc))
	_, ok, err := profile.Lookup(ctx, tc)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, users.SaveChanges(ctx, tc, false))

	bag, err := store.Load(ctx, "test/users/user-1")
	require.NoError(t, err)
	assert.Empty(t, bag)

	tc = turn.New(message("hi"))
	require.NoError(t, users.Delete(ctx, tc))
	_, err = store.Load(ctx, "test/users/user-1")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestBotState_MissingScope(t *testing.T) {
	users := state.NewUserState(memory.NewStore())
	tc := turn.New(domain.Activity{Type: domain.ActivityMessage, ChannelID: "test"})

	err := users.Load(context.Background(), tc, false)
	assert.ErrorIs(t, err, domain.ErrMissingScope)
}
