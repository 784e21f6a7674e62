package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/simplebot/internal/config"
	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/adapters/memory"
	"github.com/aretw0/simplebot/pkg/adapters/outbox"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStorage(t *testing.T, texts ...string) *Storage {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverFile
	cfg.Storage.Path = t.TempDir()

	st, err := OpenStorage(context.Background(), cfg)
	require.NoError(t, err)

	svc, err := Build(context.Background(), cfg, logging.NewNop(), WithSender(outbox.NewRecorder()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	for _, text := range texts {
		_, err = svc.Bot.ProcessActivity(context.Background(), activity(domain.ActivityMessage, text))
		require.NoError(t, err)
	}
	return st
}

func TestStateAdmin_List(t *testing.T) {
	admin, err := NewStateAdmin(seededStorage(t, "hi", "a@b.com"), false, logging.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, admin.List(context.Background(), &out))
	assert.Contains(t, out.String(), "test/users/u1")
	assert.Contains(t, out.String(), "test/conversations/c1")
}

func TestStateAdmin_ListEmpty(t *testing.T) {
	admin, err := NewStateAdmin(&Storage{Store: memory.NewStore()}, false, logging.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, admin.List(context.Background(), &out))
	assert.Equal(t, "No stored state found.\n", out.String())
}

func TestStateAdmin_InspectRedacts(t *testing.T) {
	st := seededStorage(t, "hi", "a@b.com")
	ctx := context.Background()

	admin, err := NewStateAdmin(st, false, logging.NewNop())
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, admin.Inspect(ctx, "test/users/u1", &out))
	assert.Contains(t, out.String(), `"email": "***"`)
	assert.NotContains(t, out.String(), "a@b.com")

	revealing, err := NewStateAdmin(st, true, logging.NewNop())
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, revealing.Inspect(ctx, "test/users/u1", &out))
	assert.Contains(t, out.String(), "a@b.com")

	assert.ErrorIs(t, admin.Inspect(ctx, "test/users/ghost", &out), domain.ErrStateNotFound)
}

func TestStateAdmin_Run(t *testing.T) {
	admin, err := NewStateAdmin(seededStorage(t, "hi"), false, logging.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	run, err := admin.Run(ctx, "test/conversations/c1", "DialogState")
	require.NoError(t, err)
	require.NotNil(t, run, "the run waits for the address")
	assert.Equal(t, "simpleId", run.DialogID)
	assert.Equal(t, domain.PhaseWaiting, run.Phase)
	assert.Equal(t, 1, run.Step)
	require.NotNil(t, run.Pending)
	assert.Equal(t, "emailPrompt", run.Pending.PromptID)

	none, err := admin.Run(ctx, "test/conversations/ghost", "DialogState")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStateAdmin_Remove(t *testing.T) {
	st := seededStorage(t, "hi", "a@b.com")
	admin, err := NewStateAdmin(st, false, logging.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, admin.Remove(ctx, []string{"test/users/u1", "test/users/ghost"}, &out))
	assert.Contains(t, out.String(), "Removed 'test/users/u1'")

	_, err = st.Store.Load(ctx, "test/users/u1")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}
