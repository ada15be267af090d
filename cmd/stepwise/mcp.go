package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/logging"
	mcpAdapter "github.com/aretw0/stepwise/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the workbench as MCP tools so agents can list, edit and run pipelines.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")
		if baseURL == "" {
			baseURL = "http://" + addr
		}

		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			srv := mcpAdapter.NewServer(app.Workbench,
				mcpAdapter.WithMaxInputSize(app.Config.Input.MaxSize),
				mcpAdapter.WithLogger(logging.Component(app.Logger, "mcp")),
			)

			switch transport {
			case "stdio":
				app.Logger.Info("starting MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				return srv.ServeSSE(ctx, addr, baseURL)
			default:
				return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "localhost:8081", "Listen address (only for SSE)")
	mcpCmd.Flags().String("base-url", "", "Public base URL (only for SSE)")
}
