// Package goja implements ports.StepEvaluator on top of an embedded
// JavaScript engine (github.com/dop251/goja).
//
// Step code is the body of a function taking (input, helpers). Whatever it
// returns is coerced with String(v), except undefined and null which become "".
package goja

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/ports"
)

const defaultCacheSize = 256

type runtimeState int

const (
	stateUninitialized runtimeState = iota
	stateReady
)

// EvalError is returned when step code fails to compile or throws.
// Message is the thrown Error's message, or the thrown value as a string.
type EvalError struct {
	Message string
	Cause   error
}

func (e *EvalError) Error() string { return e.Message }
func (e *EvalError) Unwrap() error { return e.Cause }

// Evaluator runs step code in a single goja runtime.
// A goja.Runtime is not goroutine-safe, so evaluations are serialized.
type Evaluator struct {
	mu        sync.Mutex
	state     runtimeState
	rt        *goja.Runtime
	toString  goja.Callable
	freeze    goja.Callable
	programs  map[string]*goja.Program
	cacheSize int
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithTimeout bounds a single evaluation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.timeout = d
	}
}

// WithCacheSize caps the number of compiled programs kept around.
func WithCacheSize(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}

// WithLogger sets the logger used for cache and runtime diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an Evaluator. The runtime is created lazily on first use.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		cacheSize: defaultCacheSize,
		programs:  make(map[string]*goja.Program),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ports.StepEvaluator = (*Evaluator)(nil)

// Evaluate compiles (or reuses) code and calls it with the bindings.
// Cancellation of ctx is ignored; only the WithTimeout bound interrupts a run.
func (e *Evaluator) Evaluate(ctx context.Context, code string, b ports.Bindings) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.init(); err != nil {
		return "", err
	}

	ctx = context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prog, err := e.compile(code)
	if err != nil {
		return "", err
	}

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		e.rt.Interrupt(ctx.Err())
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
		}
		e.rt.ClearInterrupt()
	}()

	fnVal, err := e.rt.RunProgram(prog)
	if err != nil {
		return "", e.convertError(ctx, err)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return "", &EvalError{Message: "step code did not compile to a function"}
	}

	result, err := fn(goja.Undefined(), e.rt.ToValue(b.Input), e.helpers(b.Helpers))
	if err != nil {
		return "", e.convertError(ctx, err)
	}
	return e.coerce(ctx, result)
}

// init moves the evaluator from uninitialized to ready exactly once.
func (e *Evaluator) init() error {
	if e.state == stateReady {
		return nil
	}

	rt := goja.New()
	toString, ok := goja.AssertFunction(rt.Get("String"))
	if !ok {
		return errors.New("goja: global String is not callable")
	}
	freeze, ok := goja.AssertFunction(rt.Get("Object").ToObject(rt).Get("freeze"))
	if !ok {
		return errors.New("goja: Object.freeze is not callable")
	}

	e.rt = rt
	e.toString = toString
	e.freeze = freeze
	e.state = stateReady
	e.logger.Debug("javascript runtime ready")
	return nil
}

func (e *Evaluator) compile(code string) (*goja.Program, error) {
	if prog, ok := e.programs[code]; ok {
		return prog, nil
	}

	src := "(function(input, helpers) {\n" + code + "\n})"
	prog, err := goja.Compile("step.js", src, false)
	if err != nil {
		var syntaxErr *goja.CompilerSyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &EvalError{Message: syntaxErr.Message, Cause: err}
		}
		return nil, &EvalError{Message: err.Error(), Cause: err}
	}

	if len(e.programs) >= e.cacheSize {
		e.logger.Debug("program cache full, resetting", "size", len(e.programs))
		e.programs = make(map[string]*goja.Program)
	}
	e.programs[code] = prog
	return prog, nil
}

func (e *Evaluator) helpers(helpers map[string]ports.Helper) goja.Value {
	obj := e.rt.NewObject()
	for name, fn := range helpers {
		fn := fn
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			return e.rt.ToValue(fn(call.Argument(0).String()))
		})
	}
	if _, err := e.freeze(goja.Undefined(), obj); err != nil {
		e.logger.Warn("failed to freeze helpers", "error", err)
	}
	return obj
}

func (e *Evaluator) coerce(ctx context.Context, v goja.Value) (string, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", nil
	}
	s, err := e.toString(goja.Undefined(), v)
	if err != nil {
		return "", e.convertError(ctx, err)
	}
	return s.String(), nil
}

func (e *Evaluator) convertError(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause := ctx.Err(); cause != nil {
			return fmt.Errorf("step evaluation interrupted: %w", cause)
		}
		return &EvalError{Message: "step evaluation interrupted", Cause: err}
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		return &EvalError{Message: e.thrownMessage(exc.Value()), Cause: err}
	}
	return &EvalError{Message: err.Error(), Cause: err}
}

func (e *Evaluator) thrownMessage(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "undefined"
	}
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	return v.String()
}
