package stepwise

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/runtime"
	gojaAdapter "github.com/aretw0/stepwise/pkg/adapters/goja"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/persistence"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/scheduler"
	"github.com/aretw0/stepwise/pkg/search"
	"github.com/aretw0/stepwise/pkg/workspace"
)

// Workbench is the high-level entry point for stepwise.
// It wires the entity store, persistence, the transform engine and the
// reactive scheduler so that every edit is saved and re-run.
type Workbench struct {
	ws    *workspace.Workspace
	repo  ports.StateRepository
	kv    ports.KVStore
	eng   *runtime.Engine
	sched *scheduler.Scheduler

	evaluator ports.StepEvaluator
	registry  *registry.Registry
	hooks     domain.LifecycleHooks
	tracer    trace.Tracer
	debounce  time.Duration
	wsOpts    []workspace.Option
	logger    *slog.Logger

	mu       sync.Mutex
	scope    domain.Scope
	anchorID string
}

// Option defines a functional option for configuring the Workbench.
type Option func(*Workbench)

// WithRepository sets where the envelope is loaded from and saved to.
// Defaults to an in-memory store.
func WithRepository(repo ports.StateRepository) Option {
	return func(w *Workbench) {
		w.repo = repo
	}
}

// WithStore persists the envelope in kv under the default key.
func WithStore(kv ports.KVStore) Option {
	return func(w *Workbench) {
		w.kv = kv
	}
}

// WithEvaluator replaces the embedded JavaScript evaluator.
func WithEvaluator(eval ports.StepEvaluator) Option {
	return func(w *Workbench) {
		w.evaluator = eval
	}
}

// WithRegistry sets the helpers exposed to step code.
func WithRegistry(r *registry.Registry) Option {
	return func(w *Workbench) {
		w.registry = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workbench) {
		w.hooks = w.hooks.Merge(hooks)
	}
}

// WithTracer records spans for every run.
func WithTracer(tracer trace.Tracer) Option {
	return func(w *Workbench) {
		w.tracer = tracer
	}
}

// WithDebounce sets the scheduler's quiescence window.
func WithDebounce(d time.Duration) Option {
	return func(w *Workbench) {
		w.debounce = d
	}
}

// WithWorkspaceOptions forwards options (clock, id generator) to the entity store.
func WithWorkspaceOptions(opts ...workspace.Option) Option {
	return func(w *Workbench) {
		w.wsOpts = append(w.wsOpts, opts...)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workbench) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New loads the persisted state and returns a ready Workbench.
// Loading never fails: a missing or corrupt envelope yields the empty state.
func New(ctx context.Context, opts ...Option) (*Workbench, error) {
	w := &Workbench{
		logger:   logging.NewNop(),
		debounce: domain.DefaultDebounce,
		scope:    domain.ScopeAll,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.repo == nil {
		if w.kv == nil {
			w.kv = memory.NewStore()
		}
		w.repo = persistence.NewRepository(w.kv, persistence.WithLogger(logging.Component(w.logger, "persistence")))
	}
	if w.evaluator == nil {
		w.evaluator = gojaAdapter.New(gojaAdapter.WithLogger(logging.Component(w.logger, "evaluator")))
	}
	if w.registry == nil {
		w.registry = registry.Default()
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithHelpers(w.registry.Snapshot()),
		runtime.WithLifecycleHooks(w.hooks),
		runtime.WithLogger(logging.Component(w.logger, "engine")),
	}
	if w.tracer != nil {
		engineOpts = append(engineOpts, runtime.WithTracer(w.tracer))
	}
	w.eng = runtime.NewEngine(w.evaluator, engineOpts...)
	w.sched = scheduler.New(w.eng,
		scheduler.WithDelay(w.debounce),
		scheduler.WithLogger(logging.Component(w.logger, "scheduler")),
	)

	state := w.repo.Load(ctx)
	wsOpts := append([]workspace.Option{
		workspace.WithState(state),
		workspace.WithLogger(logging.Component(w.logger, "workspace")),
	}, w.wsOpts...)
	w.ws = workspace.New(wsOpts...)
	w.ws.OnChange(w.onChange)

	w.logger.Debug("workbench ready", "groups", len(state.StepGroups), "library", len(state.LibrarySteps))
	w.observe(state)
	return w, nil
}

// Workspace exposes the entity store. Every mutation made through it is
// persisted and re-scheduled.
func (w *Workbench) Workspace() *workspace.Workspace {
	return w.ws
}

// State returns a deep copy of the current state.
func (w *Workbench) State() domain.AppState {
	return w.ws.State()
}

// SetInput replaces the raw input text of the active group.
func (w *Workbench) SetInput(text string) error {
	return w.ws.SetInputText(text)
}

// Input returns the raw input text of the active group.
func (w *Workbench) Input() string {
	g, ok := w.ws.ActiveGroup()
	if !ok {
		return ""
	}
	return g.InputText
}

// SetScope changes which steps of the active group run. The anchor is only
// consulted by the from/to scopes.
func (w *Workbench) SetScope(scope domain.Scope, anchorID string) {
	w.mu.Lock()
	w.scope = scope
	w.anchorID = anchorID
	w.mu.Unlock()
	w.observe(w.ws.State())
}

// Scope returns the current run scope and its anchor.
func (w *Workbench) Scope() (domain.Scope, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scope, w.anchorID
}

// Subscribe registers fn for every settled result.
func (w *Workbench) Subscribe(fn scheduler.Subscriber) {
	w.sched.Subscribe(fn)
}

// Latest returns the last published result, if any run happened yet.
func (w *Workbench) Latest() (scheduler.Published, bool) {
	return w.sched.Latest()
}

// Flush runs a pending recomputation immediately.
func (w *Workbench) Flush(ctx context.Context) bool {
	return w.sched.Flush(ctx)
}

// RunNow executes the active group synchronously, bypassing the debounce.
func (w *Workbench) RunNow(ctx context.Context) (scheduler.Published, error) {
	snap := w.snapshot(w.ws.State())
	if !snap.HasGroup {
		return scheduler.Published{}, fmt.Errorf("run: %w", domain.ErrNoActiveGroup)
	}
	return w.sched.Run(ctx, snap), nil
}

// Execute transforms input through steps with the workbench's engine
// without touching any state.
func (w *Workbench) Execute(ctx context.Context, input string, steps []domain.Step) domain.RunResult {
	return w.eng.Execute(ctx, input, steps)
}

// Helpers lists the utility functions available to step code.
func (w *Workbench) Helpers() []string {
	return w.registry.Names()
}

// SearchResult groups the matches of one query.
type SearchResult struct {
	Groups  []domain.StepGroup   `json:"groups"`
	Steps   []domain.Step        `json:"steps"`
	Library []domain.LibraryStep `json:"library"`
}

// Search filters groups, the active group's steps and the library by query.
func (w *Workbench) Search(query string) SearchResult {
	state := w.ws.State()
	res := SearchResult{
		Groups:  search.Groups(state.StepGroups, query),
		Steps:   []domain.Step{},
		Library: search.LibrarySteps(state.LibrarySteps, query),
	}
	if g := state.ActiveGroup(); g != nil {
		res.Steps = search.Steps(g.Steps, query)
	}
	return res
}

// ExportLibrary writes the library to pack.
func (w *Workbench) ExportLibrary(ctx context.Context, pack ports.LibraryPack) (int, error) {
	items := w.ws.State().LibrarySteps
	if err := pack.Export(ctx, items); err != nil {
		return 0, fmt.Errorf("export library: %w", err)
	}
	return len(items), nil
}

// ImportLibrary appends every template found in pack to the library.
func (w *Workbench) ImportLibrary(ctx context.Context, pack ports.LibraryPack) ([]domain.LibraryStep, error) {
	items, err := pack.Import(ctx)
	if err != nil {
		return nil, fmt.Errorf("import library: %w", err)
	}
	return w.ws.ImportLibrarySteps(items), nil
}

// Close stops the scheduler. Pending recomputations are dropped.
func (w *Workbench) Close() {
	w.sched.Close()
}

func (w *Workbench) onChange(state domain.AppState) {
	if !w.repo.Save(context.Background(), state) {
		w.logger.Warn("state not persisted")
	}
	w.observe(state)
}

func (w *Workbench) observe(state domain.AppState) {
	w.sched.Observe(w.snapshot(state))
}

func (w *Workbench) snapshot(state domain.AppState) scheduler.Snapshot {
	w.mu.Lock()
	snap := scheduler.Snapshot{Scope: w.scope, AnchorID: w.anchorID}
	w.mu.Unlock()

	if g := state.ActiveGroup(); g != nil {
		snap.HasGroup = true
		snap.Input = g.InputText
		snap.Steps = g.Steps
	}
	return snap
}
