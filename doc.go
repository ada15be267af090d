/*
Package stepwise is a text-transform workbench: users compose ordered pipelines of
small JavaScript transform steps, organize them into named groups and a reusable
library, and see the output recomputed as they edit.

# Concept

A pipeline is the ordered list of steps of the active group. Each step receives the
running text as `input` plus a frozen `helpers` object and returns the next value.
Muted steps are skipped. The first step that throws halts the run; the output is
then the value produced just before it, and the error is reported against that step.

The Workbench owns the canonical state (groups, steps, library, selection), persists
it after every mutation, and re-runs the pipeline once edits settle for a short
quiescence window. Scope (all, from or to an anchor step) and the last output are
transient and never persisted.

# Usage

	wb, err := stepwise.New(ctx, stepwise.WithStore(file.New(dir)))
	if err != nil {
		log.Fatal(err)
	}
	defer wb.Close()

	ws := wb.Workspace()
	ws.AddGroup()
	_ = wb.SetInput("hello")
	step, _ := ws.AddStep("")
	code := "return helpers.uppercase(input);"
	_, _ = ws.UpdateStep(step.ID, domain.StepPatch{Code: &code})

	res, _ := wb.RunNow(ctx)
	fmt.Println(res.Output) // HELLO

Adapters live under pkg/adapters: goja (the step evaluator), memory, file, sqlite and
redis (key-value stores for the persisted envelope), loam (library packs as Markdown
folders), http (REST surface) and mcp (tool surface for agents).
*/
package stepwise
