package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/pkg/sanitize"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the active group over every line of stdin (JSON Lines out)",
	Long: `Reads stdin line by line. Each line (raw text or a JSON string) is transformed
by the active group and one JSON object per line is written to stdout:
{"line":1,"output":"...","display":"...","errors":{},"failed":false}
The stored input is not changed. Exits non-zero when any line failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			policy := sanitize.Policy{MaxSize: app.Config.Input.MaxSize}
			failed, err := cli.Batch(ctx, app.Workbench, cmd.InOrStdin(), cmd.OutOrStdout(), policy)
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d lines: %w", failed, cli.ErrPipelineFailed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
