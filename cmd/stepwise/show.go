package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
)

var showCmd = &cobra.Command{
	Use:   "show [group]",
	Short: "Render a group as Markdown (input, pipeline, steps and output)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.Show(ctx, app.Workbench, cmd.OutOrStdout(), ref)
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
