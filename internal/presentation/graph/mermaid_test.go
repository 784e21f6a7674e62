package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/simplebot/internal/presentation/graph"
	"github.com/aretw0/simplebot/pkg/dialog"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func emailFlow() *dialog.Waterfall {
	return dialog.NewWaterfall("simple-id",
		dialog.Step{Name: "InitializeState"},
		dialog.Step{Name: "PromptForEmail", Prompt: "emailPrompt"},
		dialog.Step{Name: "Finalize"},
	)
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(emailFlow(), nil)

	for _, want := range []string{
		"graph TD",
		`simple_id__begin(("simple-id"))`,
		`simple_id_0["InitializeState"]`,
		`simple_id_1[/"PromptForEmail <br/> ⏳ emailPrompt"/]`,
		`simple_id_1 -. "rejected" .-> simple_id_1`,
		"simple_id__begin --> simple_id_0",
		"simple_id_1 --> simple_id_2",
		"simple_id_2 --> simple_id__end",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	run := &domain.DialogRun{DialogID: "simple-id", Phase: domain.PhaseWaiting, Step: 1}
	out := graph.GenerateMermaid(emailFlow(), run)

	assert.Contains(t, out, "class simple_id_0 visited;")
	assert.Contains(t, out, "class simple_id_1 current;")
	assert.NotContains(t, out, "class simple_id_2")

	done := &domain.DialogRun{DialogID: "simple-id", Phase: domain.PhaseComplete, Step: 2}
	out = graph.GenerateMermaid(emailFlow(), done)
	assert.Contains(t, out, "class simple_id__end current;")

	other := &domain.DialogRun{DialogID: "other", Phase: domain.PhaseWaiting}
	assert.NotContains(t, graph.GenerateMermaid(emailFlow(), other), "classDef")
}

func TestGenerateLifecycle(t *testing.T) {
	out := graph.GenerateLifecycle()
	assert.True(t, strings.HasPrefix(out, "stateDiagram-v2\n"))
	assert.Contains(t, out, "[*] --> idle")
	assert.Contains(t, out, "idle --> running: begin")
	assert.Contains(t, out, "waiting --> waiting: reject")
	assert.Contains(t, out, "complete --> idle: end")
}
