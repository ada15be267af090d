package tui_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/scheduler"
)

func TestGroupMarkdown_Golden(t *testing.T) {
	group := domain.StepGroup{
		ID:        "g",
		Title:     "Cleanup",
		InputText: "hello world",
		Steps: []domain.Step{
			{ID: "a", Title: "Trim", Code: "return helpers.trim(input);"},
			{ID: "b", Title: "Shout", Code: "return input.toUpperCase();", Muted: true},
			{ID: "c", Title: "Exclaim", Code: `throw new Error("bad");`},
		},
	}
	last := &scheduler.Published{
		Output:       "hello world",
		Display:      `Error in "Exclaim": bad`,
		Errors:       map[string]string{"c": "bad"},
		FailedStepID: "c",
		Failed:       true,
	}

	g := goldie.New(t)
	g.Assert(t, "group_export", []byte(tui.GroupMarkdown(group, last)))
}

func TestGroupMarkdown_NotRunYet(t *testing.T) {
	md := tui.GroupMarkdown(domain.StepGroup{Title: "Empty"}, nil)

	assert.Contains(t, md, "_No steps._")
	assert.NotContains(t, md, "## Output")
	assert.NotContains(t, md, "Overlay Styles")
}

func TestStepsMarkdown(t *testing.T) {
	md := tui.StepsMarkdown([]domain.Step{
		{ID: "a", Title: "Trim"},
		{ID: "b", Title: "Shout", Muted: true},
	}, "b")

	assert.Equal(t, "1. Trim `a`\n2. Shout _muted_ **(selected)** `b`\n", md)
}

func TestGroupsAndLibraryMarkdown(t *testing.T) {
	groups := []domain.StepGroup{
		{ID: "g1", Title: "First", Steps: []domain.Step{{ID: "a"}}},
		{ID: "g2", Title: "Second"},
	}
	assert.Equal(t, "1. First (1 steps) `g1`\n2. Second (0 steps) **(selected)** `g2`\n", tui.GroupsMarkdown(groups, "g2"))
	assert.Equal(t, "_No groups._\n", tui.GroupsMarkdown(nil, ""))

	lib := []domain.LibraryStep{{ID: "l1", Title: "Trim"}}
	assert.Equal(t, "1. Trim `l1`\n", tui.LibraryMarkdown(lib))
	assert.Equal(t, "_Library is empty._\n", tui.LibraryMarkdown(nil))
}

func TestDisplay_NonTerminalIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tui.Display(&buf, "# Title\n"))
	assert.Equal(t, "# Title\n", buf.String())
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintResult(&buf, scheduler.Published{Output: "HELLO", Failed: true, Display: `Error in "B": bad`})

	assert.Equal(t, "HELLO\nError in \"B\": bad\n", buf.String())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "___| |_ ___")
}
