package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
)

var stepCmd = &cobra.Command{
	Use:     "step",
	Aliases: []string{"steps"},
	Short:   "Manage the steps of the active group",
}

var stepListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the steps of the active group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			g, err := cli.ResolveGroup(app.Workbench, "")
			if err != nil {
				return err
			}
			state := app.Workbench.State()
			return tui.Display(cmd.OutOrStdout(), tui.StepsMarkdown(g.Steps, domain.Deref(state.SelectedStepID)))
		})
	},
}

var stepAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a step to a group (the active one by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			groupRef, _ := cmd.Flags().GetString("group")
			groupID := ""
			if groupRef != "" {
				g, err := cli.ResolveGroup(app.Workbench, groupRef)
				if err != nil {
					return err
				}
				groupID = g.ID
			}

			ws := app.Workbench.Workspace()
			step, err := ws.AddStep(groupID)
			if err != nil {
				return err
			}

			patch, err := stepPatchFromFlags(cmd)
			if err != nil {
				return err
			}
			if !patch.Empty() {
				if active, ok := ws.ActiveGroup(); !ok || active.StepIndex(step.ID) < 0 {
					return fmt.Errorf("--title and --code only apply to steps of the active group")
				}
				if step, err = ws.UpdateStep(step.ID, patch); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", step.ID, step.Title)
			return nil
		})
	},
}

var stepEditCmd = &cobra.Command{
	Use:   "edit <step>",
	Short: "Change the title or code of a step (by id or position)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			id, err := cli.ResolveStep(app.Workbench, args[0])
			if err != nil {
				return err
			}
			patch, err := stepPatchFromFlags(cmd)
			if err != nil {
				return err
			}
			_, err = app.Workbench.Workspace().UpdateStep(id, patch)
			return err
		})
	},
}

var stepMuteCmd = &cobra.Command{
	Use:   "mute <step>",
	Short: "Skip a step without deleting it (--off to unmute)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			id, err := cli.ResolveStep(app.Workbench, args[0])
			if err != nil {
				return err
			}
			off, _ := cmd.Flags().GetBool("off")
			muted := !off
			_, err = app.Workbench.Workspace().UpdateStep(id, domain.StepPatch{Muted: &muted})
			return err
		})
	},
}

var stepMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Reorder steps of the active group (1-based positions)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := positions(args[0], args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			_, err := app.Workbench.Workspace().MoveStep(from, to)
			return err
		})
	},
}

var stepDeleteCmd = &cobra.Command{
	Use:     "delete <step>",
	Aliases: []string{"rm"},
	Short:   "Delete a step (by id or position)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			id, err := cli.ResolveStep(app.Workbench, args[0])
			if err != nil {
				return err
			}
			_, err = app.Workbench.Workspace().DeleteStep(id)
			return err
		})
	},
}

var stepSelectCmd = &cobra.Command{
	Use:   "select <step>",
	Short: "Select a step (by id or position)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			id, err := cli.ResolveStep(app.Workbench, args[0])
			if err != nil {
				return err
			}
			return app.Workbench.Workspace().SelectStep(id)
		})
	},
}

// stepPatchFromFlags builds a patch from --title, --code and --code-file.
func stepPatchFromFlags(cmd *cobra.Command) (domain.StepPatch, error) {
	var patch domain.StepPatch
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		patch.Title = &title
	}
	code, ok, err := codeFromFlags(cmd)
	if err != nil {
		return patch, err
	}
	if ok {
		patch.Code = &code
	}
	return patch, nil
}

// codeFromFlags reads --code, or --code-file ("-" for stdin).
func codeFromFlags(cmd *cobra.Command) (string, bool, error) {
	if cmd.Flags().Changed("code") {
		code, _ := cmd.Flags().GetString("code")
		return code, true, nil
	}
	path, _ := cmd.Flags().GetString("code-file")
	if path == "" {
		return "", false, nil
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", false, fmt.Errorf("read code: %w", err)
	}
	return string(data), true, nil
}

func addCodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Step title")
	cmd.Flags().String("code", "", "JavaScript function body; receives input and helpers")
	cmd.Flags().String("code-file", "", "Read the code from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")
}

// positions converts 1-based command line positions to indices.
func positions(from, to string) (int, int, error) {
	f, err := strconv.Atoi(from)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid position %q", from)
	}
	t, err := strconv.Atoi(to)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid position %q", to)
	}
	return f - 1, t - 1, nil
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.AddCommand(stepListCmd, stepAddCmd, stepEditCmd, stepMuteCmd, stepMoveCmd, stepDeleteCmd, stepSelectCmd)

	addCodeFlags(stepAddCmd)
	stepAddCmd.Flags().String("group", "", "Target group (id or position); defaults to the active group")
	addCodeFlags(stepEditCmd)
	stepMuteCmd.Flags().Bool("off", false, "Unmute instead")
}
