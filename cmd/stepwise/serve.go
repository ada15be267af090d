package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the workbench as a JSON API with an OpenAPI document at /openapi.yaml,
a Server-Sent Events stream of results at /events and Prometheus metrics at
/metrics. --mcp-addr also exposes the MCP tools over SSE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{}
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.MCPAddr, _ = cmd.Flags().GetString("mcp-addr")
		opts.MCPBaseURL, _ = cmd.Flags().GetString("mcp-base-url")

		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			err := cli.Serve(ctx, app, opts)
			app.Logger.Info("server stopped")
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().String("mcp-addr", "", "Also serve MCP over SSE on this address")
	serveCmd.Flags().String("mcp-base-url", "", "Public base URL of the MCP SSE server")
}
