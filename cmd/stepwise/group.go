package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
)

var groupCmd = &cobra.Command{
	Use:     "group",
	Aliases: []string{"groups"},
	Short:   "Manage step groups",
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			state := app.Workbench.State()
			return tui.Display(cmd.OutOrStdout(), tui.GroupsMarkdown(state.StepGroups, domain.Deref(state.SelectedGroupID)))
		})
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a group and select it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			ws := app.Workbench.Workspace()
			g := ws.AddGroup()
			if len(args) == 1 {
				var err error
				if g, err = ws.UpdateGroupTitle(g.ID, args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.ID, g.Title)
			return nil
		})
	},
}

var groupRenameCmd = &cobra.Command{
	Use:   "rename <group> <title...>",
	Short: "Rename a group (by id or position)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			g, err := cli.ResolveGroup(app.Workbench, args[0])
			if err != nil {
				return err
			}
			_, err = app.Workbench.Workspace().UpdateGroupTitle(g.ID, strings.Join(args[1:], " "))
			return err
		})
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:     "delete <group>",
	Aliases: []string{"rm"},
	Short:   "Delete a group (by id or position)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			g, err := cli.ResolveGroup(app.Workbench, args[0])
			if err != nil {
				return err
			}
			_, err = app.Workbench.Workspace().DeleteGroup(g.ID)
			return err
		})
	},
}

var groupSelectCmd = &cobra.Command{
	Use:   "select <group>",
	Short: "Make a group active (by id or position)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			g, err := cli.ResolveGroup(app.Workbench, args[0])
			if err != nil {
				return err
			}
			return app.Workbench.Workspace().SelectGroup(g.ID)
		})
	},
}

func init() {
	rootCmd.AddCommand(groupCmd)
	groupCmd.AddCommand(groupListCmd, groupAddCmd, groupRenameCmd, groupDeleteCmd, groupSelectCmd)
}
