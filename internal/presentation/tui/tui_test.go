package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainRenderer(t *testing.T) {
	out, err := PlainRenderer("**bold**")
	require.NoError(t, err)
	assert.Equal(t, "**bold**", out)
}

func TestNewRenderer_RendersMarkdown(t *testing.T) {
	render := NewRenderer()
	out, err := render("Would you please give me your **email**?")
	require.NoError(t, err)
	assert.Contains(t, out, "email")
	assert.NotContains(t, out, "**")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "exit")
}
