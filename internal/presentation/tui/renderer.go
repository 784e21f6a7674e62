package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWordWrap = 80

// NewRenderer returns a function that renders reply markdown using glamour.
// The style follows the terminal background and wraps at the terminal width.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth()),
	)
	if err != nil {
		return PlainRenderer
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.Trim(out, "\n"), nil
	}
}

// PlainRenderer returns text untouched, for pipes and dumb terminals.
func PlainRenderer(text string) (string, error) {
	return text, nil
}

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func wrapWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 && w < defaultWordWrap {
		return w
	}
	return defaultWordWrap
}
