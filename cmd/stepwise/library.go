package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	loamAdapter "github.com/aretw0/stepwise/pkg/adapters/loam"
	"github.com/aretw0/stepwise/pkg/domain"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage reusable step templates",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return tui.Display(cmd.OutOrStdout(), tui.LibraryMarkdown(app.Workbench.State().LibrarySteps))
		})
	},
}

var libraryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a library template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			ws := app.Workbench.Workspace()
			item := ws.AddLibraryStep()

			var patch domain.LibraryStepPatch
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				patch.Title = &title
			}
			code, ok, err := codeFromFlags(cmd)
			if err != nil {
				return err
			}
			if ok {
				patch.Code = &code
			}
			if patch.Title != nil || patch.Code != nil {
				if item, err = ws.UpdateLibraryStep(item.ID, patch); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.ID, item.Title)
			return nil
		})
	},
}

var librarySaveCmd = &cobra.Command{
	Use:   "save <step>",
	Short: "Copy a step of the active group into the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			id, err := cli.ResolveStep(app.Workbench, args[0])
			if err != nil {
				return err
			}
			item, err := app.Workbench.Workspace().SaveStepToLibrary(id)
			if err != nil {
				return err
			}
			if item != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.ID, item.Title)
			}
			return nil
		})
	},
}

var libraryInsertCmd = &cobra.Command{
	Use:   "insert <template>",
	Short: "Insert a copy of a template into the active group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetInt("at")
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			id, err := cli.ResolveLibrary(app.Workbench, args[0])
			if err != nil {
				return err
			}
			step, err := app.Workbench.Workspace().AddStepFromLibrary(id, at-1)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", step.ID, step.Title)
			return nil
		})
	},
}

var libraryMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Reorder library templates (1-based positions)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := positions(args[0], args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			app.Workbench.Workspace().MoveLibraryStep(from, to)
			return nil
		})
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:     "delete <template>",
	Aliases: []string{"rm"},
	Short:   "Delete a library template",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			id, err := cli.ResolveLibrary(app.Workbench, args[0])
			if err != nil {
				return err
			}
			_, err = app.Workbench.Workspace().DeleteLibraryStep(id)
			return err
		})
	},
}

var libraryExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the library as Markdown documents into dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			pack, err := loamAdapter.Open(args[0])
			if err != nil {
				return err
			}
			n, err := app.Workbench.ExportLibrary(ctx, pack)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", plural(n, "template"), args[0])
			return nil
		})
	},
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Append the Markdown templates found in dir to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			pack, err := loamAdapter.Open(args[0])
			if err != nil {
				return err
			}
			items, err := app.Workbench.ImportLibrary(ctx, pack)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s from %s\n", plural(len(items), "template"), args[0])
			return nil
		})
	},
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd, libraryAddCmd, librarySaveCmd, libraryInsertCmd,
		libraryMoveCmd, libraryDeleteCmd, libraryExportCmd, libraryImportCmd)

	addCodeFlags(libraryAddCmd)
	libraryInsertCmd.Flags().Int("at", 0, "1-based insert position; appends when omitted")
}
