// Package email renders the body of the message sent by the email dialog.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultSubject is the subject of the email sent by the email dialog.
const DefaultSubject = "Hello from a simple bot!"

// DefaultTemplate is the markdown body used when no template asset is configured.
const DefaultTemplate = `Hiya!

<br />

This is a cool email that you sent from the Simple Bot!

No need to reply to anything, and if you didn't send it

**DEFINITELY** ignore it. Bye bye!

\- A Simple Bot
`

// Composer produces the subject and HTML body of outgoing emails.
type Composer struct {
	subject    string
	assets     ports.AssetLoader
	templateID string
	md         goldmark.Markdown
	logger     *slog.Logger
}

// Option configures the Composer.
type Option func(*Composer)

// WithSubject overrides DefaultSubject.
func WithSubject(subject string) Option {
	return func(c *Composer) {
		if subject != "" {
			c.subject = subject
		}
	}
}

// WithTemplate reads the markdown body from an asset instead of DefaultTemplate.
func WithTemplate(assets ports.AssetLoader, id string) Option {
	return func(c *Composer) {
		c.assets = assets
		c.templateID = id
	}
}

// WithLogger configures a logger for the Composer.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// NewComposer creates a Composer.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		subject: DefaultSubject,
		md:      goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe())),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subject returns the email subject.
func (c *Composer) Subject() string {
	return c.subject
}

// Body renders the HTML body. A missing template asset falls back to DefaultTemplate.
func (c *Composer) Body(ctx context.Context) (string, error) {
	source := DefaultTemplate

	if c.assets != nil && c.templateID != "" {
		asset, err := c.assets.GetAsset(ctx, c.templateID)
		switch {
		case errors.Is(err, domain.ErrAssetNotFound):
			c.logger.Warn("Email template not found, using default", "template", c.templateID)
		case err != nil:
			return "", fmt.Errorf("load email template %s: %w", c.templateID, err)
		default:
			source = asset.Content
		}
	}

	return c.Render(source)
}

// Render converts markdown to HTML.
func (c *Composer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
