package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Filter groups, active steps and library templates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		query := strings.Join(args, " ")

		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			res := app.Workbench.Search(query)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			state := app.Workbench.State()
			var sb strings.Builder
			fmt.Fprintf(&sb, "## Groups\n\n%s\n", tui.GroupsMarkdown(res.Groups, domain.Deref(state.SelectedGroupID)))
			fmt.Fprintf(&sb, "## Steps\n\n%s\n", tui.StepsMarkdown(res.Steps, domain.Deref(state.SelectedStepID)))
			fmt.Fprintf(&sb, "## Library\n\n%s", tui.LibraryMarkdown(res.Library))
			return tui.Display(cmd.OutOrStdout(), sb.String())
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Bool("json", false, "Print matches as JSON")
}
