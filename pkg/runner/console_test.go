package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/simplebot"
	"github.com/aretw0/simplebot/pkg/adapters/outbox"
	"github.com/aretw0/simplebot/pkg/bot"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBot struct {
	mu         sync.Mutex
	activities []domain.Activity
	replies    func(domain.Activity) ([]domain.Reply, error)
}

func (b *recordingBot) ProcessActivity(_ context.Context, a domain.Activity) ([]domain.Reply, error) {
	b.mu.Lock()
	b.activities = append(b.activities, a)
	b.mu.Unlock()
	if b.replies != nil {
		return b.replies(a)
	}
	return []domain.Reply{{ID: a.ID, Text: "echo: " + a.Text}}, nil
}

func TestConsole_SendsGreetingThenLines(t *testing.T) {
	fake := &recordingBot{}
	var out bytes.Buffer

	c := runner.NewConsole(fake, strings.NewReader("hello\n\n  a@b.com  \n"), &out,
		runner.WithIdentity("", "conv-1", "u-1"),
	)
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, fake.activities, 3)
	assert.Equal(t, domain.ActivityConversationUpdate, fake.activities[0].Type)
	assert.Equal(t, "hello", fake.activities[1].Text)
	assert.Equal(t, "a@b.com", fake.activities[2].Text, "lines are trimmed, blanks skipped")

	for _, a := range fake.activities {
		assert.Equal(t, runner.DefaultChannelID, a.ChannelID)
		assert.Equal(t, "conv-1", a.ConversationID)
		assert.Equal(t, "u-1", a.UserID)
		assert.NotEmpty(t, a.ID)
	}
	assert.Contains(t, out.String(), "echo: hello")
}

func TestConsole_ExitStopsLoop(t *testing.T) {
	fake := &recordingBot{}
	var out bytes.Buffer

	c := runner.NewConsole(fake, strings.NewReader("one\nquit\ntwo\n"), &out)
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, fake.activities, 2)
	assert.Equal(t, "one", fake.activities[1].Text)
	assert.NotContains(t, out.String(), "echo: two")
}

func TestConsole_CancelledContext(t *testing.T) {
	fake := &recordingBot{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := runner.NewConsole(fake, strings.NewReader(""), &bytes.Buffer{})
	err := c.Run(ctx)
	// Either the loop notices cancellation or input hits EOF first.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestConsole_SanitizesInput(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "16")
	fake := &recordingBot{}
	var out bytes.Buffer

	input := "a\x07@b.com\n" + strings.Repeat("x", 20) + "\n"
	c := runner.NewConsole(fake, strings.NewReader(input), &out)
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, fake.activities, 2, "oversized line never reaches the bot")
	assert.Equal(t, "a@b.com", fake.activities[1].Text)
	assert.Contains(t, out.String(), "Error:")
}

func TestConsole_RendererAndCards(t *testing.T) {
	fake := &recordingBot{
		replies: func(a domain.Activity) ([]domain.Reply, error) {
			if !a.IsMessage() {
				return []domain.Reply{{Attachments: []domain.Attachment{{
					ContentType: domain.ContentTypeAdaptiveCard,
					Content:     json.RawMessage(`{"type":"AdaptiveCard","body":[{"type":"TextBlock","text":"Welcome!"},{"type":"Image","url":"x"}]}`),
				}}}}, nil
			}
			return []domain.Reply{{Text: "plain"}}, nil
		},
	}
	var out bytes.Buffer

	c := runner.NewConsole(fake, strings.NewReader("hi\n"), &out,
		runner.WithRenderer(func(s string) (string, error) { return "<" + s + ">\n", nil }),
	)
	require.NoError(t, c.Run(context.Background()))

	assert.Contains(t, out.String(), "[card: "+domain.ContentTypeAdaptiveCard+"]\n  Welcome!")
	assert.Contains(t, out.String(), "<plain>")
}

func TestConsole_RendererFailureFallsBack(t *testing.T) {
	fake := &recordingBot{}
	var out bytes.Buffer

	c := runner.NewConsole(fake, strings.NewReader("hi\n"), &out,
		runner.WithRenderer(func(string) (string, error) { return "", errors.New("boom") }),
	)
	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "echo: hi")
}

func TestConsole_BotErrorKeepsGoing(t *testing.T) {
	fake := &recordingBot{
		replies: func(a domain.Activity) ([]domain.Reply, error) {
			if a.Text == "fail" {
				return []domain.Reply{{Text: "sorry"}}, errors.New("boom")
			}
			return nil, nil
		},
	}
	var out bytes.Buffer

	c := runner.NewConsole(fake, strings.NewReader("fail\nnext\n"), &out)
	require.NoError(t, c.Run(context.Background()))

	assert.Len(t, fake.activities, 3)
	assert.Contains(t, out.String(), "sorry")
}

func TestConsole_JSONMode(t *testing.T) {
	fake := &recordingBot{}
	var out bytes.Buffer

	input := strings.Join([]string{
		`{"type":"message","text":"from json","userId":"json-user"}`,
		`plain line`,
		`{"type":`,
	}, "\n")
	c := runner.NewConsole(fake, strings.NewReader(input), &out, runner.WithJSON())
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, fake.activities, 3)
	assert.Equal(t, "json-user", fake.activities[1].UserID)
	assert.Equal(t, "from json", fake.activities[1].Text)
	assert.Equal(t, "plain line", fake.activities[2].Text)
	assert.Equal(t, c.ConversationID(), fake.activities[1].ConversationID)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4, "three reply arrays and one error line")

	var replies []domain.Reply
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &replies))
	require.Len(t, replies, 1)
	assert.Equal(t, "echo: from json", replies[0].Text)

	var errLine map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &errLine))
	assert.Contains(t, errLine["error"], "invalid activity")
}

func TestConsole_EmailConversation(t *testing.T) {
	sender := outbox.NewRecorder()
	b, err := simplebot.New(simplebot.WithEmailSender(sender))
	require.NoError(t, err)

	var out bytes.Buffer
	c := runner.NewConsole(b, strings.NewReader("hi\nnope\na@b.com\n"), &out)
	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, bot.GreetingText)
	assert.Contains(t, text, bot.PromptEmailText)
	assert.Contains(t, text, bot.ConfirmationText("a@b.com"))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@b.com", sent[0].To)
}
