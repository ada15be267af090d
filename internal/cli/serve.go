package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/stepwise/internal/logging"
	httpAdapter "github.com/aretw0/stepwise/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/stepwise/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions selects the listeners started by Serve.
type ServeOptions struct {
	Addr string
	// MCPAddr also starts the MCP SSE transport when set.
	MCPAddr    string
	MCPBaseURL string
}

// Serve runs the HTTP API (and optionally the MCP SSE transport) until ctx is done.
func Serve(ctx context.Context, app *App, opts ServeOptions) error {
	if opts.Addr == "" {
		opts.Addr = app.Config.HTTP.Addr
	}

	handler, err := httpAdapter.NewHandler(ctx, app.Workbench,
		httpAdapter.WithMetrics(app.Metrics),
		httpAdapter.WithMaxInputSize(app.Config.Input.MaxSize),
		httpAdapter.WithLogger(logging.Component(app.Logger, "http")),
	)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("HTTP server listening", "address", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if opts.MCPAddr != "" {
		baseURL := opts.MCPBaseURL
		if baseURL == "" {
			baseURL = "http://" + opts.MCPAddr
		}
		mcpServer := mcpAdapter.NewServer(app.Workbench,
			mcpAdapter.WithMaxInputSize(app.Config.Input.MaxSize),
			mcpAdapter.WithLogger(logging.Component(app.Logger, "mcp")),
		)
		g.Go(func() error {
			return mcpServer.ServeSSE(gctx, opts.MCPAddr, baseURL)
		})
	}

	return g.Wait()
}
