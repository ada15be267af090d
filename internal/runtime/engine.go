package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the Transform Engine: it folds an ordered list of steps over an input text.
type Engine struct {
	evaluator ports.StepEvaluator
	helpers   map[string]ports.Helper
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithHelpers sets the read-only utility functions handed to every step.
func WithHelpers(helpers map[string]ports.Helper) EngineOption {
	return func(e *Engine) {
		e.helpers = helpers
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer records one span per run and one child span per executed step.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// NewEngine creates a new engine evaluating step code with evaluator.
func NewEngine(evaluator ports.StepEvaluator, opts ...EngineOption) *Engine {
	e := &Engine{
		evaluator: evaluator,
		helpers:   map[string]ports.Helper{},
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs steps in order against input.
//
// Muted steps are skipped entirely. The first failing step halts the run: the
// result then carries the value produced just before it, a single error entry
// keyed by the failing step id, and the failing step itself.
// Execute never stops because of ctx cancellation; ctx only carries tracing and
// hook metadata.
func (e *Engine) Execute(ctx context.Context, input string, steps []domain.Step) domain.RunResult {
	start := e.now()
	result := domain.RunResult{Output: input, Errors: map[string]string{}}

	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
			attribute.Int("pipeline.steps", len(steps)),
		))
		defer func() {
			if result.Failed() {
				span.SetStatus(codes.Error, "step failed")
			}
			span.End()
		}()
	}

	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventRunStart},
			StepCount: len(steps),
		})
	}

	value := input
	for i, step := range steps {
		if step.Muted {
			continue
		}

		out, err := e.runStep(ctx, i, step, value)
		if err != nil {
			failed := step
			result.Output = value
			result.Errors[step.ID] = err.Error()
			result.FailedStep = &failed
			e.logger.Debug("Step failed, halting run", "step_id", step.ID, "position", i, "err", err)
			break
		}
		value = out
	}

	if !result.Failed() {
		result.Output = value
	}

	if e.hooks.OnRunComplete != nil {
		end := e.now()
		e.hooks.OnRunComplete(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: end, Type: domain.EventRunComplete},
			StepCount: len(steps),
			Failed:    result.Failed(),
			Duration:  end.Sub(start),
		})
	}

	return result
}

func (e *Engine) runStep(ctx context.Context, position int, step domain.Step, value string) (string, error) {
	started := e.now()
	event := &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: started, Type: domain.EventStepEnter},
		StepID:    step.ID,
		Title:     step.Title,
		Position:  position,
	}
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, event)
	}

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "pipeline.step", trace.WithAttributes(
			attribute.String("step.id", step.ID),
			attribute.String("step.title", step.Title),
			attribute.Int("step.position", position),
		))
		defer span.End()
	}

	out, err := e.evaluator.Evaluate(context.WithoutCancel(ctx), step.Code, ports.Bindings{Input: value, Helpers: e.helpers})

	leave := *event
	leave.Timestamp = e.now()
	leave.Duration = leave.Timestamp.Sub(started)
	if err != nil {
		leave.Type = domain.EventStepError
		leave.Err = err.Error()
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if e.hooks.OnStepError != nil {
			e.hooks.OnStepError(ctx, &leave)
		}
		return "", err
	}

	leave.Type = domain.EventStepLeave
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, &leave)
	}
	return out, nil
}
