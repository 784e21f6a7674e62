package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/google/uuid"
)

// Default identity used for console conversations.
const (
	DefaultChannelID = "console"
	DefaultUserID    = "local-user"
)

// Bot processes a single inbound activity.
type Bot interface {
	ProcessActivity(ctx context.Context, activity domain.Activity) ([]domain.Reply, error)
}

// ContentRenderer converts reply text (markdown) into terminal output.
type ContentRenderer func(string) (string, error)

// Console drives a Bot from a line-oriented stream.
type Console struct {
	bot            Bot
	input          io.Reader
	output         io.Writer
	renderer       ContentRenderer
	json           bool
	channelID      string
	conversationID string
	userID         string
	logger         *slog.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithRenderer renders reply text before printing it (text mode only).
func WithRenderer(r ContentRenderer) Option {
	return func(c *Console) {
		c.renderer = r
	}
}

// WithJSON switches the console to JSON lines: activities in, reply arrays out.
func WithJSON() Option {
	return func(c *Console) {
		c.json = true
	}
}

// WithIdentity fixes the channel, conversation and user ids. Empty values keep the defaults.
func WithIdentity(channelID, conversationID, userID string) Option {
	return func(c *Console) {
		if channelID != "" {
			c.channelID = channelID
		}
		if conversationID != "" {
			c.conversationID = conversationID
		}
		if userID != "" {
			c.userID = userID
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// NewConsole creates a console reading from r and writing to w.
// Each console gets a fresh conversation id unless WithIdentity provides one.
func NewConsole(bot Bot, r io.Reader, w io.Writer, opts ...Option) *Console {
	c := &Console{
		bot:            bot,
		input:          r,
		output:         w,
		channelID:      DefaultChannelID,
		conversationID: uuid.NewString(),
		userID:         DefaultUserID,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConversationID returns the id used for every activity of this console.
func (c *Console) ConversationID() string {
	return c.conversationID
}

// Run greets the user and then processes input lines until EOF, "exit"/"quit"
// or context cancellation. Turn errors are logged and do not stop the loop.
func (c *Console) Run(ctx context.Context) error {
	if err := c.turn(ctx, c.activity(domain.ActivityConversationUpdate, "")); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)

	lines := c.readLines(done)
	for {
		if !c.json {
			fmt.Fprint(c.output, "> ")
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			return nil
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}

		activity, err := c.parse(trimmed)
		if err != nil {
			c.reportError(err)
			continue
		}
		if err := c.turn(ctx, activity); err != nil {
			return err
		}
	}
}

// readLines pumps input lines into a channel so Run can observe cancellation
// while the reader blocks.
func (c *Console) readLines(done <-chan struct{}) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(c.input)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*MaxInputSize()+1)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.logger.Warn("Console input stopped", "err", err)
		}
	}()
	return ch
}

func (c *Console) parse(line string) (domain.Activity, error) {
	if c.json && strings.HasPrefix(line, "{") {
		var a domain.Activity
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			return domain.Activity{}, fmt.Errorf("invalid activity: %w", err)
		}
		if a.Type == "" {
			a.Type = domain.ActivityMessage
		}
		return c.fill(a), nil
	}
	return c.activity(domain.ActivityMessage, line), nil
}

func (c *Console) activity(typ domain.ActivityType, text string) domain.Activity {
	return c.fill(domain.Activity{Type: typ, Text: text})
}

func (c *Console) fill(a domain.Activity) domain.Activity {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.ChannelID == "" {
		a.ChannelID = c.channelID
	}
	if a.ConversationID == "" {
		a.ConversationID = c.conversationID
	}
	if a.UserID == "" {
		a.UserID = c.userID
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return a
}

// turn runs one activity. Only write failures are returned; bot failures are
// logged because the bot already apologized in its replies.
func (c *Console) turn(ctx context.Context, activity domain.Activity) error {
	if activity.IsMessage() {
		clean, err := SanitizeInput(activity.Text)
		if err != nil {
			c.reportError(err)
			return nil
		}
		activity.Text = clean
	}

	replies, err := c.bot.ProcessActivity(ctx, activity)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.logger.Error("Turn failed", "conversation_id", activity.ConversationID, "err", err)
	}
	return c.deliver(replies)
}

func (c *Console) deliver(replies []domain.Reply) error {
	if c.json {
		if replies == nil {
			replies = []domain.Reply{}
		}
		return json.NewEncoder(c.output).Encode(replies)
	}

	for _, r := range replies {
		if r.Text != "" {
			if _, err := fmt.Fprintln(c.output, c.render(r.Text)); err != nil {
				return err
			}
		}
		for _, a := range r.Attachments {
			if _, err := fmt.Fprintln(c.output, describeAttachment(a)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Console) render(text string) string {
	if c.renderer == nil {
		return text
	}
	out, err := c.renderer(text)
	if err != nil {
		c.logger.Debug("Render failed, printing raw text", "err", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (c *Console) reportError(err error) {
	if c.json {
		_ = json.NewEncoder(c.output).Encode(map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintf(c.output, "Error: %v\n", err)
}

// describeAttachment prints a card marker followed by the card's text blocks.
func describeAttachment(a domain.Attachment) string {
	var card struct {
		Body []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"body"`
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[card: %s]", a.ContentType)
	if err := json.Unmarshal(a.Content, &card); err == nil {
		for _, block := range card.Body {
			if block.Type == "TextBlock" && block.Text != "" {
				b.WriteString("\n  ")
				b.WriteString(block.Text)
			}
		}
	}
	return b.String()
}
