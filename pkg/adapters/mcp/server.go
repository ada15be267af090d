package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/sanitize"
	"github.com/aretw0/stepwise/pkg/scheduler"
	"github.com/aretw0/stepwise/pkg/search"
	"github.com/aretw0/stepwise/pkg/workspace"
)

const stateURI = "stepwise://state"

// Workbench is the part of *stepwise.Workbench the MCP tools drive.
type Workbench interface {
	Workspace() *workspace.Workspace
	State() domain.AppState
	SetInput(text string) error
	RunNow(ctx context.Context) (scheduler.Published, error)
	Search(query string) stepwise.SearchResult
}

// Server exposes a Workbench as MCP tools.
type Server struct {
	wb        Workbench
	mcpServer *server.MCPServer
	policy    sanitize.Policy
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMaxInputSize bounds input text accepted by the tools.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.policy.MaxSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(wb Workbench, opts ...Option) *Server {
	s := &Server{
		wb:        wb,
		mcpServer: server.NewMCPServer("stepwise-mcp", strings.TrimSpace(stepwise.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the tools over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

type runArgs struct {
	Input *string `json:"input,omitempty"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List step groups, optionally filtered by a case-insensitive title query."),
		mcp.WithString("query", mcp.Description("Substring to match against group titles")),
	), s.handleListGroups)

	s.mcpServer.AddTool(mcp.NewTool("list_steps",
		mcp.WithDescription("List the steps of the active group in execution order."),
		mcp.WithString("query", mcp.Description("Substring to match against step titles and code")),
	), s.handleListSteps)

	s.mcpServer.AddTool(mcp.NewTool("add_step",
		mcp.WithDescription("Append a step to the active group (or to group_id)."),
		mcp.WithString("group_id", mcp.Description("Target group id; defaults to the active group")),
		mcp.WithString("title", mcp.Description("Step title")),
		mcp.WithString("code", mcp.Description("JavaScript function body; receives input and helpers")),
	), s.handleAddStep)

	s.mcpServer.AddTool(mcp.NewTool("update_step",
		mcp.WithDescription("Update the title, code or muted flag of a step in the active group."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Step id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("code", mcp.Description("New JavaScript function body")),
		mcp.WithBoolean("muted", mcp.Description("Skip the step when running")),
	), s.handleUpdateStep)

	s.mcpServer.AddTool(mcp.NewTool("run_pipeline",
		mcp.WithDescription("Run the active group's pipeline now. When input is given it replaces the group's input first."),
		mcp.WithString("input", mcp.Description("Raw input text")),
		mcp.WithOutputSchema[scheduler.Published](),
	), mcp.NewStructuredToolHandler(s.handleRunPipeline))

	s.mcpServer.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search groups, the active group's steps and the library."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive substring")),
	), s.handleSearch)
}

func (s *Server) handleListGroups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups := search.Groups(s.wb.State().StepGroups, request.GetString("query", ""))
	return jsonResult(groups)
}

func (s *Server) handleListSteps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, ok := s.wb.Workspace().ActiveGroup()
	if !ok {
		return mcp.NewToolResultError(domain.ErrNoActiveGroup.Error()), nil
	}
	return jsonResult(search.Steps(g.Steps, request.GetString("query", "")))
}

func (s *Server) handleAddStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws := s.wb.Workspace()
	step, err := ws.AddStep(request.GetString("group_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("add step failed: %v", err)), nil
	}

	patch := patchFrom(request.GetArguments())
	patch.Muted = nil
	if patch.Empty() {
		return jsonResult(step)
	}
	// A step added to an inactive group is not addressable by UpdateStep.
	if g, ok := ws.ActiveGroup(); !ok || g.StepIndex(step.ID) < 0 {
		return mcp.NewToolResultError("title and code can only be set on steps of the active group"), nil
	}
	step, err = ws.UpdateStep(step.ID, patch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("add step failed: %v", err)), nil
	}
	return jsonResult(step)
}

func (s *Server) handleUpdateStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	step, err := s.wb.Workspace().UpdateStep(id, patchFrom(request.GetArguments()))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update step failed: %v", err)), nil
	}
	return jsonResult(step)
}

func (s *Server) handleRunPipeline(ctx context.Context, request mcp.CallToolRequest, args runArgs) (scheduler.Published, error) {
	if args.Input != nil {
		clean, err := s.policy.Clean(*args.Input)
		if err != nil {
			s.logger.Warn("MCP run_pipeline: input rejected", "error", err, "size", len(*args.Input))
			return scheduler.Published{}, fmt.Errorf("input rejected: %w", err)
		}
		if err := s.wb.SetInput(clean); err != nil {
			return scheduler.Published{}, err
		}
	}
	return s.wb.RunNow(ctx)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.wb.Search(query))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(stateURI, "Workbench State",
		mcp.WithResourceDescription("Groups, steps, library and selection"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.wb.State())
		if err != nil {
			return nil, fmt.Errorf("encode state: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      stateURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

// patchFrom reads the optional title, code and muted arguments.
func patchFrom(args map[string]any) domain.StepPatch {
	var p domain.StepPatch
	if v, ok := args["title"].(string); ok {
		p.Title = &v
	}
	if v, ok := args["code"].(string); ok {
		p.Code = &v
	}
	if v, ok := args["muted"].(bool); ok {
		p.Muted = &v
	}
	return p
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
