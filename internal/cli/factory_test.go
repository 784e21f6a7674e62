package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/loam"
	"github.com/aretw0/simplebot/internal/config"
	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/internal/testutils"
	"github.com/aretw0/simplebot/pkg/adapters/outbox"
	"github.com/aretw0/simplebot/pkg/bot"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(typ domain.ActivityType, text string) domain.Activity {
	return domain.Activity{Type: typ, ChannelID: "test", ConversationID: "c1", UserID: "u1", Text: text}
}

func runConversation(t *testing.T, svc *Services) []domain.Reply {
	t.Helper()
	ctx := context.Background()
	var all []domain.Reply
	for _, a := range []domain.Activity{
		activity(domain.ActivityMessage, "hi"),
		activity(domain.ActivityMessage, "a@b.com"),
	} {
		replies, err := svc.Bot.ProcessActivity(ctx, a)
		require.NoError(t, err)
		all = append(all, replies...)
	}
	return all
}

func TestOpenStorage_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		locker bool
	}{
		{"memory", func(c *config.Config) {}, false},
		{"file", func(c *config.Config) {
			c.Storage.Driver = config.DriverFile
			c.Storage.Path = t.TempDir()
		}, false},
		{"sqlite", func(c *config.Config) {
			c.Storage.Driver = config.DriverSQLite
			c.Storage.Path = filepath.Join(t.TempDir(), "state.db")
		}, false},
		{"redis", func(c *config.Config) {
			c.Storage.Driver = config.DriverRedis
			c.Storage.Redis.Addr = mr.Addr()
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			st, err := OpenStorage(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })

			assert.Equal(t, tt.locker, st.Locker != nil)

			ctx := context.Background()
			require.NoError(t, st.Store.Save(ctx, "test/users/u1", domain.Bag{"v": "x"}))
			bag, err := st.Store.Load(ctx, "test/users/u1")
			require.NoError(t, err)
			assert.Equal(t, "x", bag["v"])
		})
	}
}

func TestOpenStorage_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "mongo"
	_, err := OpenStorage(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown storage driver")

	cfg = config.Default()
	cfg.Storage.Driver = config.DriverRedis
	cfg.Storage.Redis.Addr = "127.0.0.1:1"
	_, err = OpenStorage(context.Background(), cfg)
	assert.ErrorContains(t, err, "connect to redis")
}

func TestOpenStorage_Encrypted(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverFile
	cfg.Storage.Path = dir
	cfg.Storage.EncryptionKey = strings.Repeat("ab", 32)

	st, err := OpenStorage(context.Background(), cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.Store.Save(ctx, "test/users/u1", domain.Bag{"UserProfile": map[string]any{"email": "a@b.com"}}))

	plainCfg := config.Default()
	plainCfg.Storage.Driver = config.DriverFile
	plainCfg.Storage.Path = dir
	plain, err := OpenStorage(ctx, plainCfg)
	require.NoError(t, err)

	raw, err := plain.Store.Load(ctx, "test/users/u1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "UserProfile", "bag is stored as an encrypted envelope")

	bag, err := st.Store.Load(ctx, "test/users/u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", bag["UserProfile"].(map[string]any)["email"])
}

func TestBuild_Conversation(t *testing.T) {
	sender := outbox.NewRecorder()
	cfg := config.Default()

	svc, err := Build(context.Background(), cfg, logging.NewNop(), WithSender(sender))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	replies := runConversation(t, svc)
	require.Len(t, replies, 2)
	assert.Equal(t, bot.PromptEmailText, replies[0].Text)
	assert.Equal(t, bot.ConfirmationText("a@b.com"), replies[1].Text)
	require.Len(t, sender.Sent(), 1)
	assert.Equal(t, cfg.Email.Subject, sender.Sent()[0].Subject)

	families, err := svc.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "simplebot_turns_total")
}

func TestBuild_MetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false

	svc, err := Build(context.Background(), cfg, logging.NewNop(), WithSender(outbox.NewRecorder()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	runConversation(t, svc)
	families, err := svc.Registry.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestBuild_MinLengthPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Dialog.EmailPolicy = "min-length"
	cfg.Dialog.MinLength = 3

	svc, err := Build(context.Background(), cfg, logging.NewNop(), WithSender(outbox.NewRecorder()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	ctx := context.Background()
	_, err = svc.Bot.ProcessActivity(ctx, activity(domain.ActivityMessage, "hi"))
	require.NoError(t, err)
	replies, err := svc.Bot.ProcessActivity(ctx, activity(domain.ActivityMessage, "abcd"))
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, bot.ConfirmationText("abcd"), replies[0].Text, "no @ needed under min-length")
}

func TestBuild_UnknownPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Dialog.EmailPolicy = "regex"

	_, err := Build(context.Background(), cfg, logging.NewNop())
	assert.ErrorIs(t, err, domain.ErrUnknownPolicy)
}

func TestBuild_ContentRepository(t *testing.T) {
	dir, _ := testutils.SetupContentRepo(t, map[string]string{
		"end-card.md": "---\ncontent_type: application/vnd.microsoft.card.adaptive\n---\n{\"type\":\"AdaptiveCard\",\"body\":[]}\n",
		"email.md":    "---\ncontent_type: text/markdown\n---\nCustom template\n",
	}, loam.WithVersioning(false))

	sender := outbox.NewRecorder()
	cfg := config.Default()
	cfg.Content.Dir = dir

	svc, err := Build(context.Background(), cfg, logging.NewNop(), WithSender(sender))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	replies := runConversation(t, svc)
	require.NotEmpty(t, replies)
	require.Len(t, replies[0].Attachments, 1, "welcome card precedes the prompt")
	assert.Equal(t, domain.ContentTypeAdaptiveCard, replies[0].Attachments[0].ContentType)

	require.Len(t, sender.Sent(), 1)
	assert.Contains(t, sender.Sent()[0].HTMLBody, "Custom template")
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	svc, err := Build(context.Background(), cfg, logging.NewNop(), WithSender(outbox.NewRecorder()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	srv := NewServer(cfg, svc)
	assert.Equal(t, cfg.Server.Addr, srv.Addr)
	assert.NotNil(t, srv.Handler)
}

func TestPrintSystemMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintSystemMessage(&buf, "Listening on %s", ":3978")
	assert.Equal(t, ">>> Listening on :3978\n", buf.String())
}
