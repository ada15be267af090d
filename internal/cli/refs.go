package cli

import (
	"fmt"
	"strconv"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/domain"
)

// resolveStepRef accepts a step id or a 1-based position in the active group.
// An empty ref resolves to "".
func resolveStepRef(wb *stepwise.Workbench, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	g, ok := wb.Workspace().ActiveGroup()
	if !ok {
		return "", domain.ErrNoActiveGroup
	}
	if g.StepIndex(ref) >= 0 {
		return ref, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(g.Steps) {
		return g.Steps[n-1].ID, nil
	}
	return "", fmt.Errorf("step %q: %w", ref, domain.ErrStepNotFound)
}

// resolveGroupRef accepts a group id or a 1-based position; empty means the active group.
func resolveGroupRef(wb *stepwise.Workbench, ref string) (domain.StepGroup, error) {
	state := wb.State()
	if ref == "" {
		g := state.ActiveGroup()
		if g == nil {
			return domain.StepGroup{}, domain.ErrNoActiveGroup
		}
		return g.Clone(), nil
	}
	if i := state.GroupIndex(ref); i >= 0 {
		return state.StepGroups[i], nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(state.StepGroups) {
		return state.StepGroups[n-1], nil
	}
	return domain.StepGroup{}, fmt.Errorf("group %q: %w", ref, domain.ErrGroupNotFound)
}

// resolveLibraryRef accepts a library step id or a 1-based position.
func resolveLibraryRef(wb *stepwise.Workbench, ref string) (string, error) {
	state := wb.State()
	if state.LibraryIndex(ref) >= 0 {
		return ref, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(state.LibrarySteps) {
		return state.LibrarySteps[n-1].ID, nil
	}
	return "", fmt.Errorf("library step %q: %w", ref, domain.ErrLibraryStepNotFound)
}

// ResolveStep exposes step references to commands.
func ResolveStep(wb *stepwise.Workbench, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("step reference required: %w", domain.ErrStepNotFound)
	}
	return resolveStepRef(wb, ref)
}

// ResolveGroup exposes group references to commands.
func ResolveGroup(wb *stepwise.Workbench, ref string) (domain.StepGroup, error) {
	return resolveGroupRef(wb, ref)
}

// ResolveLibrary exposes library references to commands.
func ResolveLibrary(wb *stepwise.Workbench, ref string) (string, error) {
	return resolveLibraryRef(wb, ref)
}
