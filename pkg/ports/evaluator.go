package ports

import "context"

// Helper is a read-only utility function exposed to step code.
type Helper func(string) string

// Bindings are the two values a step's code is evaluated against.
type Bindings struct {
	Input   string
	Helpers map[string]Helper
}

// StepEvaluator runs the body of a user-authored transform function.
// Evaluation is synchronous. The returned value is already coerced to a string;
// any raised error halts the pipeline at that step.
type StepEvaluator interface {
	Evaluate(ctx context.Context, code string, bindings Bindings) (string, error)
}
