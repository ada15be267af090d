package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/stepwise/pkg/scheduler"
)

// PrintResult writes the pipeline output to w. On failure the composed
// error line follows in red.
func PrintResult(w io.Writer, p scheduler.Published) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, p.Output)
	if p.Failed {
		fmt.Fprintln(w, out.String(p.Display).Foreground(out.Color("#f87171")).Bold())
	}
}

// PrintError writes a short error line to w.
func PrintError(w io.Writer, msg string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w, out.String("error: "+msg).Foreground(out.Color("#f87171")))
}
