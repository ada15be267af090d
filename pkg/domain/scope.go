package domain

import "fmt"

// Scope selects which contiguous sub-sequence of the active group's steps a run executes.
type Scope string

const (
	ScopeAll  Scope = "all"  // Every step
	ScopeFrom Scope = "from" // From the anchor (inclusive) to the end
	ScopeTo   Scope = "to"   // From the start to the anchor (inclusive)
)

// ParseScope converts user input into a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeAll, ScopeFrom, ScopeTo:
		return Scope(s), nil
	case "":
		return ScopeAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}
