package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/presentation/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Recompute the active group whenever file changes",
	Long: `Uses the contents of file as the active group's input and prints a fresh
result every time the file is saved. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			tui.PrintBanner(cmd.OutOrStdout())
			return cli.Watch(ctx, app.Workbench, args[0], cmd.OutOrStdout(), logging.Component(app.Logger, "watch"))
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
