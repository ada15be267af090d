package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/scheduler"
)

// ErrPipelineFailed is returned when a step halted the run, so the
// process can exit non-zero after printing the partial output.
var ErrPipelineFailed = errors.New("pipeline failed")

// RunOptions controls a one-shot run of the active group.
type RunOptions struct {
	// Input replaces the group's input when set.
	Input *string
	// InputFile replaces the group's input with the file contents ("-" reads r).
	InputFile string
	Scope     string
	Anchor    string
	JSON      bool
}

// Run executes the active group once and prints the result to w.
func Run(ctx context.Context, wb *stepwise.Workbench, r io.Reader, w io.Writer, opts RunOptions) error {
	if err := applyInput(wb, r, opts); err != nil {
		return err
	}

	scope, err := domain.ParseScope(opts.Scope)
	if err != nil {
		return err
	}
	anchor, err := resolveStepRef(wb, opts.Anchor)
	if err != nil {
		return err
	}
	wb.SetScope(scope, anchor)

	res, err := wb.RunNow(ctx)
	if err != nil {
		return err
	}
	if err := printPublished(w, res, opts.JSON); err != nil {
		return err
	}
	if res.Failed {
		return ErrPipelineFailed
	}
	return nil
}

func applyInput(wb *stepwise.Workbench, r io.Reader, opts RunOptions) error {
	switch {
	case opts.InputFile == "-":
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		return wb.SetInput(string(data))
	case opts.InputFile != "":
		data, err := os.ReadFile(opts.InputFile)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		return wb.SetInput(string(data))
	case opts.Input != nil:
		return wb.SetInput(*opts.Input)
	}
	return nil
}

func printPublished(w io.Writer, p scheduler.Published, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		return enc.Encode(p)
	}
	tui.PrintResult(w, p)
	return nil
}

// Show writes the Markdown export of a group (the active one when ref is
// empty) to w, including the output of running it.
func Show(ctx context.Context, wb *stepwise.Workbench, w io.Writer, ref string) error {
	group, err := resolveGroupRef(wb, ref)
	if err != nil {
		return err
	}
	res := scheduler.Publish(wb.Execute(ctx, group.InputText, group.Steps))
	return tui.Display(w, tui.GroupMarkdown(group, &res))
}
