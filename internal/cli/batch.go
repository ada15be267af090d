package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/sanitize"
	"github.com/aretw0/stepwise/pkg/scheduler"
)

// BatchResult is one JSON line written by Batch.
type BatchResult struct {
	Line int `json:"line"`
	scheduler.Published
}

// Batch runs the active group's steps over every line read from r and writes
// one JSON result per line to w. A line is either a JSON string or raw text.
// Nothing is persisted; the group's own input is left untouched.
func Batch(ctx context.Context, wb *stepwise.Workbench, r io.Reader, w io.Writer, policy sanitize.Policy) (failed int, err error) {
	group, err := resolveGroupRef(wb, "")
	if err != nil {
		return 0, err
	}

	reader := bufio.NewReader(r)
	enc := json.NewEncoder(w)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		text, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return failed, fmt.Errorf("read line %d: %w", n, readErr)
		}
		if readErr == io.EOF && text == "" {
			return failed, nil
		}

		input, err := policy.Clean(decodeLine(text))
		if err != nil {
			return failed, fmt.Errorf("line %d: %w", n, err)
		}
		res := scheduler.Publish(wb.Execute(ctx, input, group.Steps))
		if res.Failed {
			failed++
		}
		if err := enc.Encode(BatchResult{Line: n, Published: res}); err != nil {
			return failed, err
		}
		if readErr == io.EOF {
			return failed, nil
		}
	}
}

func decodeLine(text string) string {
	text = strings.TrimRight(text, "\r\n")
	var val string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &val); err == nil {
		return val
	}
	return text
}
