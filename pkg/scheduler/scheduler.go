// Package scheduler recomputes the pipeline output after edits settle.
//
// The scheduler is either idle or pending. Any relevant change arms (or
// re-arms) a quiescence timer; only the settled snapshot is executed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
)

// State is the scheduler's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Runner executes an ordered list of steps. *runtime.Engine satisfies it.
type Runner interface {
	Execute(ctx context.Context, input string, steps []domain.Step) domain.RunResult
}

// Snapshot is everything that affects the pipeline output.
type Snapshot struct {
	HasGroup bool
	Input    string
	Steps    []domain.Step
	Scope    domain.Scope
	AnchorID string
}

func (s Snapshot) equal(o Snapshot) bool {
	return s.HasGroup == o.HasGroup &&
		s.Input == o.Input &&
		s.Scope == o.Scope &&
		s.AnchorID == o.AnchorID &&
		slices.Equal(s.Steps, o.Steps)
}

// Published is the outcome of a settled run, ready for display.
type Published struct {
	Output       string            `json:"output"`
	Display      string            `json:"display"`
	Errors       map[string]string `json:"errors"`
	FailedStepID string            `json:"failedStepId,omitempty"`
	Failed       bool              `json:"failed"`
}

// Publish converts an engine result into its displayable form.
func Publish(res domain.RunResult) Published {
	p := Published{
		Output:  res.Output,
		Display: res.Output,
		Errors:  make(map[string]string, len(res.Errors)),
	}
	for id, msg := range res.Errors {
		p.Errors[id] = msg
	}
	if res.Failed() {
		p.Failed = true
		p.FailedStepID = res.FailedStep.ID
		p.Display = fmt.Sprintf("Error in %q: %s", res.FailedStep.Title, res.Errors[res.FailedStep.ID])
	}
	return p
}

// Subscriber receives every published result.
type Subscriber func(Published)

// Scheduler debounces snapshots and runs the settled one.
type Scheduler struct {
	runner Runner
	delay  time.Duration
	logger *slog.Logger

	mu          sync.Mutex
	state       State
	timer       *time.Timer
	generation  uint64
	last        Snapshot
	observed    bool
	latest      Published
	hasLatest   bool
	subscribers []Subscriber
	closed      bool

	// runMu keeps runs from interleaving.
	runMu sync.Mutex
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithDelay sets the quiescence window.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates an idle Scheduler.
func New(runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner: runner,
		delay:  domain.DefaultDebounce,
		state:  StateIdle,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a subscriber for future publications.
func (s *Scheduler) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Observe records a snapshot. A snapshot equal to the last observed one is
// ignored; any other cancels the pending timer and arms a new one. Without
// an active group nothing is scheduled.
func (s *Scheduler) Observe(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.observed && s.last.equal(snap) {
		return
	}
	s.observed = true
	s.last = cloneSnapshot(snap)
	s.stopLocked()

	if !snap.HasGroup {
		return
	}

	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(s.delay, func() { s.settle(gen) })
	s.state = StatePending
}

// Flush runs a pending snapshot immediately. It reports whether a run happened.
func (s *Scheduler) Flush(ctx context.Context) bool {
	s.mu.Lock()
	if s.state != StatePending {
		s.mu.Unlock()
		return false
	}
	snap := cloneSnapshot(s.last)
	s.stopLocked()
	s.mu.Unlock()

	s.run(ctx, snap)
	return true
}

// Run executes snap right away, bypassing the debounce, and publishes the result.
func (s *Scheduler) Run(ctx context.Context, snap Snapshot) Published {
	return s.run(ctx, cloneSnapshot(snap))
}

// Latest returns the most recent publication, if any.
func (s *Scheduler) Latest() (Published, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels any pending run. Later observations are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// A timer that already fired sees a stale generation and does nothing.
	s.generation++
	s.state = StateIdle
}

func (s *Scheduler) settle(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	snap := cloneSnapshot(s.last)
	s.timer = nil
	s.state = StateIdle
	s.mu.Unlock()

	s.run(context.Background(), snap)
}

func (s *Scheduler) run(ctx context.Context, snap Snapshot) Published {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	steps := runtime.ResolveScope(snap.Scope, snap.AnchorID, snap.Steps)
	res := s.runner.Execute(ctx, snap.Input, steps)
	pub := Publish(res)

	s.mu.Lock()
	s.latest = pub
	s.hasLatest = true
	subscribers := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	s.logger.Debug("pipeline settled", "steps", len(steps), "failed", pub.Failed)
	for _, fn := range subscribers {
		fn(pub)
	}
	return pub
}

func cloneSnapshot(s Snapshot) Snapshot {
	s.Steps = slices.Clone(s.Steps)
	return s
}
