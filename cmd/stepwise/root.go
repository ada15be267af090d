package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/tui"
)

var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Stepwise is a workbench for ordered text-transform pipelines",
	Long: `Stepwise keeps groups of small JavaScript steps that transform a text input
one after another. Every edit is persisted and the pipeline output is recomputed
once edits settle.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrPipelineFailed) {
			tui.PrintError(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/stepwise/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend override: memory, file, sqlite or redis")
	rootCmd.PersistentFlags().String("data", "", "Storage path override (directory or database file)")
}

func globalOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	backend, _ := cmd.Flags().GetString("backend")
	data, _ := cmd.Flags().GetString("data")
	return cli.Options{
		ConfigPath: configPath,
		Debug:      debug,
		Backend:    backend,
		DataPath:   data,
	}
}

// withApp opens the workbench, runs fn under a signal-aware context and
// releases everything afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) error {
	sigCtx := cli.NewSignalContext(cmd.Context())
	defer sigCtx.Cancel()

	app, err := cli.Open(sigCtx, globalOptions(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(sigCtx, app)
}
