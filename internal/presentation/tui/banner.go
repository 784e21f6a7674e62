package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the chat banner and a short usage hint.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	lines := []struct {
		text  string
		color string
	}{
		{`     _                 _      _           _   `, "#38bdf8"},
		{` ___(_)_ __ ___  _ __ | | ___| |__   ___ | |_ `, "#60a5fa"},
		{`/ __| | '_ ' _ \| '_ \| |/ _ \ '_ \ / _ \| __|`, "#818cf8"},
		{`\__ \ | | | | | | |_) | |  __/ |_) | (_) | |_ `, "#a78bfa"},
		{`|___/_|_| |_| |_| .__/|_|\___|_.__/ \___/ \__|`, "#c084fc"},
		{`                |_|                           `, "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	hint := out.String(fmt.Sprintf("  v%s  type 'exit' or press Ctrl+D to leave", version)).Faint()
	fmt.Fprintln(w, hint)
	fmt.Fprintln(w)
}
