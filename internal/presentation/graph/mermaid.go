package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Overlay contains run state to visualize on the pipeline.
type Overlay struct {
	// Scoped lists the ids the last run was scoped to; empty means every step.
	Scoped       []string
	FailedStepID string
}

// GenerateMermaid produces a left-to-right Mermaid flowchart of a pipeline.
// It applies semantic styling:
// - Input/Output: ((Circle))
// - Muted step: dashed and bypassed by the data flow
// - Default: [Rectangle]
// It also applies overlay styles (out of scope/failed) if provided.
func GenerateMermaid(steps []domain.Step, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    input((\"input\"))\n")

	prev := "input"
	var muted []string
	for i, step := range steps {
		safeID := sanitizeMermaidID(step.ID)
		label := strings.ReplaceAll(step.Title, "\"", "'")
		sb.WriteString(fmt.Sprintf("    %s[\"%d. %s\"]\n", safeID, i+1, label))

		if step.Muted {
			// Muted steps hang off the flow without transforming it.
			sb.WriteString(fmt.Sprintf("    %s -.- %s\n", prev, safeID))
			muted = append(muted, safeID)
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, safeID))
		prev = safeID
	}
	sb.WriteString("    output((\"output\"))\n")
	sb.WriteString(fmt.Sprintf("    %s --> output\n", prev))

	if len(muted) > 0 {
		sb.WriteString("    classDef muted stroke-dasharray:4 4,color:#888;\n")
		for _, id := range muted {
			sb.WriteString(fmt.Sprintf("    class %s muted;\n", id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef skipped fill:#eeeeee,stroke:#9e9e9e,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")

		if len(overlay.Scoped) > 0 {
			inScope := make(map[string]bool, len(overlay.Scoped))
			for _, id := range overlay.Scoped {
				inScope[id] = true
			}
			for _, step := range steps {
				if !inScope[step.ID] {
					sb.WriteString(fmt.Sprintf("    class %s skipped;\n", sanitizeMermaidID(step.ID)))
				}
			}
		}

		if overlay.FailedStepID != "" {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", sanitizeMermaidID(overlay.FailedStepID)))
		}
	}

	return sb.String()
}

// sanitizeMermaidID prefixes ids so they never collide with input/output
// or start with a digit.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "s_" + r.Replace(id)
}
