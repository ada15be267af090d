package workspace

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Listener is notified after every successful mutation with a deep copy of the state.
type Listener func(domain.AppState)

// Workspace owns the canonical AppState.
// Safe for concurrent use. Listeners run outside the state lock but in
// mutation order: a mutation is not applied until the previous one's
// listeners have returned.
type Workspace struct {
	notifyMu  sync.Mutex
	mu        sync.Mutex
	state     domain.AppState
	clock     func() time.Time
	newID     func() string
	listeners []Listener
	logger    *slog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(w *Workspace) {
		w.clock = clock
	}
}

// WithIDGenerator overrides the identity generator (UUIDv4 by default).
func WithIDGenerator(gen func() string) Option {
	return func(w *Workspace) {
		w.newID = gen
	}
}

// WithState seeds the workspace, typically with a loaded envelope.
func WithState(state domain.AppState) Option {
	return func(w *Workspace) {
		w.state = state.Clone()
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// New creates a Workspace holding the empty state unless WithState is given.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		state:  domain.EmptyState(),
		clock:  time.Now,
		newID:  uuid.NewString,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// OnChange registers a listener for state changes.
func (w *Workspace) OnChange(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// State returns a deep copy of the current state.
func (w *Workspace) State() domain.AppState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// ActiveGroup returns a copy of the selected group.
func (w *Workspace) ActiveGroup() (domain.StepGroup, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g := w.state.ActiveGroup()
	if g == nil {
		return domain.StepGroup{}, false
	}
	return g.Clone(), true
}

// mutate runs fn under the lock and notifies listeners when fn reports a change.
// Listeners must not mutate the workspace.
func (w *Workspace) mutate(op string, fn func(s *domain.AppState) (bool, error)) error {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	changed, err := fn(&w.state)
	if err != nil || !changed {
		w.mu.Unlock()
		if err != nil {
			w.logger.Debug("mutation rejected", "op", op, "error", err)
		}
		return err
	}
	snapshot := w.state.Clone()
	listeners := append([]Listener(nil), w.listeners...)
	w.mu.Unlock()

	w.logger.Debug("state changed", "op", op)
	for _, l := range listeners {
		l(snapshot)
	}
	return nil
}

func (w *Workspace) now() int64 {
	return w.clock().UnixMilli()
}

// stamp returns the next updatedAt so timestamps never move backwards.
func (w *Workspace) stamp(prev int64) int64 {
	if now := w.now(); now > prev {
		return now
	}
	return prev
}

func activeGroup(s *domain.AppState) (*domain.StepGroup, error) {
	g := s.ActiveGroup()
	if g == nil {
		return nil, domain.ErrNoActiveGroup
	}
	return g, nil
}

func defaultTitle(kind string, position int) string {
	return fmt.Sprintf("%s %d", kind, position)
}

// inRange reports whether from and to both index a sequence of length n.
func inRange(from, to, n int) bool {
	return from >= 0 && to >= 0 && from < n && to < n
}

func move[T any](items []T, from, to int) {
	item := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = item
}
