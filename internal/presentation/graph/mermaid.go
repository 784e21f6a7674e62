package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/simplebot/pkg/dialog"
	"github.com/aretw0/simplebot/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a waterfall.
// Shapes:
// - Begin/End: ((Circle))
// - Step that prompts: [/Parallelogram/], with a retry loop
// - Default: [Rectangle]
// When run is the persisted run of this waterfall, passed steps are styled
// as visited and the step the run stands on as current.
func GenerateMermaid(w *dialog.Waterfall, run *domain.DialogRun) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	begin := sanitizeMermaidID(w.ID()) + "__begin"
	end := sanitizeMermaidID(w.ID()) + "__end"
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", begin, w.ID())

	steps := w.Steps()
	prompts := w.Prompts()
	prev := begin
	for i, name := range steps {
		id := stepID(w, i)
		if prompts[i] != "" {
			fmt.Fprintf(&sb, "    %s[/\"%s <br/> ⏳ %s\"/]\n", id, name, prompts[i])
			fmt.Fprintf(&sb, "    %s -. \"rejected\" .-> %s\n", id, id)
		} else {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, name)
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		prev = id
	}
	fmt.Fprintf(&sb, "    %s((\"end\"))\n", end)
	fmt.Fprintf(&sb, "    %s --> %s\n", prev, end)

	if run != nil && run.DialogID == w.ID() {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		fmt.Fprintf(&sb, "    class %s visited;\n", begin)
		for i := 0; i < run.Step && i < len(steps); i++ {
			fmt.Fprintf(&sb, "    class %s visited;\n", stepID(w, i))
		}

		current := end
		if run.Phase != domain.PhaseComplete && run.Step < len(steps) {
			current = stepID(w, run.Step)
		}
		fmt.Fprintf(&sb, "    class %s current;\n", current)
	}

	return sb.String()
}

// GenerateLifecycle renders the dialog run state machine as a Mermaid state diagram.
func GenerateLifecycle() string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&sb, "    [*] --> %s\n", domain.PhaseIdle)
	for _, t := range dialog.Transitions() {
		fmt.Fprintf(&sb, "    %s --> %s: %s\n", t.From, t.To, t.Event)
	}
	return sb.String()
}

func stepID(w *dialog.Waterfall, i int) string {
	return fmt.Sprintf("%s_%d", sanitizeMermaidID(w.ID()), i)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
