package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/sanitize"
	"github.com/aretw0/stepwise/pkg/scheduler"
	"github.com/aretw0/stepwise/pkg/workspace"
)

// Workbench is the part of *stepwise.Workbench the REST surface drives.
type Workbench interface {
	Workspace() *workspace.Workspace
	State() domain.AppState
	Input() string
	SetInput(text string) error
	Scope() (domain.Scope, string)
	SetScope(scope domain.Scope, anchorID string)
	RunNow(ctx context.Context) (scheduler.Published, error)
	Latest() (scheduler.Published, bool)
	Search(query string) stepwise.SearchResult
	Subscribe(fn scheduler.Subscriber)
}

// Server exposes a Workbench over HTTP.
type Server struct {
	wb      Workbench
	streams *StreamManager
	metrics *observability.Metrics
	policy  sanitize.Policy
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves the collectors on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMaxInputSize bounds the input text accepted by PUT /input.
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

// NewHandler creates the HTTP handler for wb. Requests are validated against
// the embedded OpenAPI document before they reach a handler.
func NewHandler(ctx context.Context, wb Workbench, opts ...Option) (http.Handler, error) {
	s := &Server{
		wb:      wb,
		streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	wb.Subscribe(s.broadcast)

	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := validateRequests(doc, s.logger)
	if err != nil {
		return nil, err
	}
	docJSON, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode openapi: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openapiYAML)
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docJSON)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.getHealth)
		r.Get("/info", s.getInfo)
		r.Get("/state", s.getState)
		r.Put("/selection", s.putSelection)

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.listGroups)
			r.Post("/", s.addGroup)
			r.Patch("/{id}", s.updateGroup)
			r.Delete("/{id}", s.deleteGroup)
			r.Get("/{id}/markdown", s.exportGroup)
		})
		r.Route("/steps", func(r chi.Router) {
			r.Get("/", s.listSteps)
			r.Post("/", s.addStep)
			r.Post("/move", s.moveStep)
			r.Patch("/{id}", s.updateStep)
			r.Delete("/{id}", s.deleteStep)
		})
		r.Route("/library", func(r chi.Router) {
			r.Get("/", s.listLibrary)
			r.Post("/", s.addLibraryStep)
			r.Post("/move", s.moveLibraryStep)
			r.Post("/save", s.saveStepToLibrary)
			r.Patch("/{id}", s.updateLibraryStep)
			r.Delete("/{id}", s.deleteLibraryStep)
			r.Post("/{id}/insert", s.insertLibraryStep)
		})

		r.Get("/input", s.getInput)
		r.Put("/input", s.putInput)
		r.Get("/scope", s.getScope)
		r.Put("/scope", s.putScope)
		r.Post("/run", s.run)
		r.Get("/output", s.getOutput)
		r.Get("/search", s.search)
		r.Get("/events", s.subscribeEvents)
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "stepwise-http",
		"version": strings.TrimSpace(stepwise.Version),
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>stepwise API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
