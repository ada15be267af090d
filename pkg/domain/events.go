package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart    EventType = "run_start"
	EventRunComplete EventType = "run_complete"
	EventStepEnter   EventType = "step_enter"
	EventStepLeave   EventType = "step_leave"
	EventStepError   EventType = "step_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// RunEvent describes the start or the end of a pipeline run.
type RunEvent struct {
	EventBase
	StepCount int           `json:"step_count"`
	Failed    bool          `json:"failed,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// StepEvent describes the execution of a single step.
type StepEvent struct {
	EventBase
	StepID   string        `json:"step_id"`
	Title    string        `json:"title"`
	Position int           `json:"position"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      string        `json:"err,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Muted steps produce no step events.
type LifecycleHooks struct {
	OnRunStart    func(context.Context, *RunEvent)
	OnRunComplete func(context.Context, *RunEvent)
	OnStepEnter   func(context.Context, *StepEvent)
	OnStepLeave   func(context.Context, *StepEvent)
	OnStepError   func(context.Context, *StepEvent)
}

// Merge returns hooks calling h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart:    chain(h.OnRunStart, other.OnRunStart),
		OnRunComplete: chain(h.OnRunComplete, other.OnRunComplete),
		OnStepEnter:   chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:   chain(h.OnStepLeave, other.OnStepLeave),
		OnStepError:   chain(h.OnStepError, other.OnStepError),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
