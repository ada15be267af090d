package goja

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/registry"
)

func eval(t *testing.T, e *Evaluator, code, input string) (string, error) {
	t.Helper()
	return e.Evaluate(context.Background(), code, ports.Bindings{
		Input:   input,
		Helpers: registry.Default().Snapshot(),
	})
}

func TestEvaluate_Coercion(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		code string
		want string
	}{
		{"string", `return input.toUpperCase();`, "HELLO"},
		{"number", `return 42;`, "42"},
		{"boolean", `return true;`, "true"},
		{"array", `return [1, 2];`, "1,2"},
		{"object", `return {};`, "[object Object]"},
		{"undefined", `return undefined;`, ""},
		{"no return", `input.length;`, ""},
		{"null", `return null;`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval(t, e, tt.code, "hello")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Helpers(t *testing.T) {
	e := New()

	got, err := eval(t, e, `return helpers.capitalize(helpers.trim(input));`, "  world ")
	require.NoError(t, err)
	assert.Equal(t, "World", got)
}

func TestEvaluate_HelpersAreFrozen(t *testing.T) {
	e := New()

	got, err := eval(t, e, `helpers.uppercase = function() { return "x"; }; return helpers.uppercase(input);`, "ab")
	require.NoError(t, err)
	assert.Equal(t, "AB", got)
}

func TestEvaluate_ThrownError(t *testing.T) {
	e := New()

	_, err := eval(t, e, `throw new Error("bad");`, "x")
	require.Error(t, err)

	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "bad", evalErr.Message)
	assert.Equal(t, "bad", err.Error())
}

func TestEvaluate_ThrownNonError(t *testing.T) {
	e := New()

	_, err := eval(t, e, `throw "plain";`, "x")
	require.Error(t, err)
	assert.Equal(t, "plain", err.Error())
}

func TestEvaluate_ReferenceError(t *testing.T) {
	e := New()

	_, err := eval(t, e, `return missing.value;`, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestEvaluate_SyntaxError(t *testing.T) {
	e := New()

	_, err := eval(t, e, `return (;`, "x")
	require.Error(t, err)

	var evalErr *EvalError
	assert.True(t, errors.As(err, &evalErr))
}

func TestEvaluate_CachesPrograms(t *testing.T) {
	e := New(WithCacheSize(2))

	for i := 0; i < 3; i++ {
		_, err := eval(t, e, `return input;`, "x")
		require.NoError(t, err)
	}
	assert.Len(t, e.programs, 1)

	_, _ = eval(t, e, `return 1;`, "x")
	_, _ = eval(t, e, `return 2;`, "x")
	assert.LessOrEqual(t, len(e.programs), 2)
}

func TestEvaluate_Timeout(t *testing.T) {
	e := New(WithTimeout(20 * time.Millisecond))

	_, err := eval(t, e, `for (;;) {}`, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	got, err := eval(t, e, `return input + "!";`, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok!", got)
}

func TestEvaluate_IgnoresCanceledContext(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := e.Evaluate(ctx, `return input.toUpperCase();`, ports.Bindings{Input: "x"})
	require.NoError(t, err)
	assert.Equal(t, "X", out)
}

func TestEvaluate_InitializesOnce(t *testing.T) {
	e := New()
	assert.Equal(t, stateUninitialized, e.state)

	_, err := eval(t, e, `return input;`, "x")
	require.NoError(t, err)
	rt := e.rt
	assert.Equal(t, stateReady, e.state)

	_, err = eval(t, e, `return input;`, "y")
	require.NoError(t, err)
	assert.Same(t, rt, e.rt)
}
