package runtime

import "github.com/aretw0/stepwise/pkg/domain"

// ResolveScope returns the ordered sub-sequence of steps a run executes.
//
// ScopeFrom keeps the anchor and everything after it; ScopeTo keeps everything up
// to and including the anchor. An empty or unknown anchor, or an unknown scope,
// fails open to every step, never to none.
func ResolveScope(scope domain.Scope, anchorID string, steps []domain.Step) []domain.Step {
	if scope != domain.ScopeFrom && scope != domain.ScopeTo {
		return steps
	}

	idx := -1
	if anchorID != "" {
		for i := range steps {
			if steps[i].ID == anchorID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return steps
	}

	if scope == domain.ScopeFrom {
		return steps[idx:]
	}
	return steps[:idx+1]
}
