package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aretw0/simplebot/pkg/adapters/sqlite"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*sqlite.Store)(nil)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	ports.RunStateStoreContract(t, store)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Save(ctx, "k", domain.Bag{"v": "x"}))

	bag, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "x", bag["v"])
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "console/users/u-1", domain.Bag{"UserProfile": map[string]any{"email": "a@b.com"}}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	bag, err := reopened.Load(ctx, "console/users/u-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", bag["UserProfile"].(map[string]any)["email"])
}

func TestIsBusyError(t *testing.T) {
	assert.False(t, sqlite.IsBusyError(nil))
	assert.True(t, sqlite.IsBusyError(errors.New("SQLITE_BUSY: database busy")))
	assert.True(t, sqlite.IsBusyError(errors.New("database is locked")))
	assert.False(t, sqlite.IsBusyError(errors.New("no such table")))
}
