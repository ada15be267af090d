package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/scheduler"
)

// GroupMarkdown exports a group as a Markdown document: its input, a Mermaid
// diagram of the pipeline, every step's code, and the last output when known.
func GroupMarkdown(g domain.StepGroup, last *scheduler.Published) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", g.Title)

	sb.WriteString("## Input\n\n")
	writeFence(&sb, "text", g.InputText)

	var overlay *graph.Overlay
	if last != nil && last.Failed {
		overlay = &graph.Overlay{FailedStepID: last.FailedStepID}
	}
	sb.WriteString("## Pipeline\n\n")
	sb.WriteString("```mermaid\n")
	sb.WriteString(graph.GenerateMermaid(g.Steps, overlay))
	sb.WriteString("```\n\n")

	sb.WriteString("## Steps\n\n")
	if len(g.Steps) == 0 {
		sb.WriteString("_No steps._\n\n")
	}
	for i, s := range g.Steps {
		title := s.Title
		if s.Muted {
			title += " (muted)"
		}
		fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, title)
		writeFence(&sb, "js", s.Code)
	}

	if last != nil {
		sb.WriteString("## Output\n\n")
		writeFence(&sb, "text", last.Output)
		if last.Failed {
			fmt.Fprintf(&sb, "> %s\n\n", last.Display)
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// StepsMarkdown renders a compact numbered list, used by list commands.
func StepsMarkdown(steps []domain.Step, selectedID string) string {
	if len(steps) == 0 {
		return "_No steps._\n"
	}
	var sb strings.Builder
	for i, s := range steps {
		marker := ""
		if s.ID == selectedID {
			marker = " **(selected)**"
		}
		muted := ""
		if s.Muted {
			muted = " _muted_"
		}
		fmt.Fprintf(&sb, "%d. %s%s%s `%s`\n", i+1, s.Title, muted, marker, s.ID)
	}
	return sb.String()
}

func writeFence(sb *strings.Builder, lang, body string) {
	fmt.Fprintf(sb, "```%s\n%s\n```\n\n", lang, strings.TrimRight(body, "\n"))
}

// GroupsMarkdown lists groups with their step counts.
func GroupsMarkdown(groups []domain.StepGroup, selectedID string) string {
	if len(groups) == 0 {
		return "_No groups._\n"
	}
	var sb strings.Builder
	for i, g := range groups {
		marker := ""
		if g.ID == selectedID {
			marker = " **(selected)**"
		}
		fmt.Fprintf(&sb, "%d. %s (%d steps)%s `%s`\n", i+1, g.Title, len(g.Steps), marker, g.ID)
	}
	return sb.String()
}

// LibraryMarkdown lists library templates.
func LibraryMarkdown(items []domain.LibraryStep) string {
	if len(items) == 0 {
		return "_Library is empty._\n"
	}
	var sb strings.Builder
	for i, l := range items {
		fmt.Fprintf(&sb, "%d. %s `%s`\n", i+1, l.Title, l.ID)
	}
	return sb.String()
}
