package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for stepwise.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Subtle gradient-like color scheme (Teal/Cyan)
	lines := []struct {
		text  string
		color string
	}{
		{"      _                       _          ", "#2dd4bf"},
		{"  ___| |_ ___ _ ____      __ (_)___  ___ ", "#22d3ee"},
		{" / __| __/ _ \\ '_ \\ \\ /\\ / / | / __|/ _ \\", "#38bdf8"},
		{" \\__ \\ ||  __/ |_) \\ V  V /  | \\__ \\  __/", "#60a5fa"},
		{" |___/\\__\\___| .__/ \\_/\\_/   |_|___/\\___|", "#818cf8"},
		{"             |_|                          ", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
