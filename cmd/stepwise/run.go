package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the active group once and print the output",
	Long: `Runs the steps of the active group against its input and prints the result.
--input and --input-file replace (and persist) the group's input first.
A failing step prints the partial output plus the error and exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{}
		if cmd.Flags().Changed("input") {
			input, _ := cmd.Flags().GetString("input")
			opts.Input = &input
		}
		opts.InputFile, _ = cmd.Flags().GetString("input-file")
		opts.Scope, _ = cmd.Flags().GetString("scope")
		opts.Anchor, _ = cmd.Flags().GetString("anchor")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.Run(ctx, app.Workbench, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "Input text")
	runCmd.Flags().StringP("input-file", "f", "", "Read the input from a file (- for stdin)")
	runCmd.Flags().String("scope", "all", "Which steps run: all, from or to")
	runCmd.Flags().String("anchor", "", "Anchor step for --scope from/to (id or position)")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
	runCmd.MarkFlagsMutuallyExclusive("input", "input-file")
}
