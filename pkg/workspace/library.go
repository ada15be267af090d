package workspace

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

// AddLibraryStep appends a new library template titled "Library Step N".
func (w *Workspace) AddLibraryStep() domain.LibraryStep {
	var created domain.LibraryStep
	_ = w.mutate("add_library_step", func(s *domain.AppState) (bool, error) {
		now := w.now()
		created = domain.LibraryStep{
			ID:        w.newID(),
			Title:     defaultTitle("Library Step", len(s.LibrarySteps)+1),
			Code:      domain.DefaultStepCode,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.LibrarySteps = append(s.LibrarySteps, created)
		return true, nil
	})
	return created
}

// UpdateLibraryStep applies a partial update to a library template.
func (w *Workspace) UpdateLibraryStep(id string, patch domain.LibraryStepPatch) (domain.LibraryStep, error) {
	var updated domain.LibraryStep
	err := w.mutate("update_library_step", func(s *domain.AppState) (bool, error) {
		i := s.LibraryIndex(id)
		if i < 0 {
			return false, fmt.Errorf("update library step %q: %w", id, domain.ErrLibraryStepNotFound)
		}
		item := &s.LibrarySteps[i]
		if patch.Title == nil && patch.Code == nil {
			updated = *item
			return false, nil
		}
		patch.Apply(item)
		item.UpdatedAt = w.stamp(item.UpdatedAt)
		updated = *item
		return true, nil
	})
	return updated, err
}

// DeleteLibraryStep removes a library template.
func (w *Workspace) DeleteLibraryStep(id string) ([]domain.LibraryStep, error) {
	var items []domain.LibraryStep
	err := w.mutate("delete_library_step", func(s *domain.AppState) (bool, error) {
		i := s.LibraryIndex(id)
		if i < 0 {
			return false, fmt.Errorf("delete library step %q: %w", id, domain.ErrLibraryStepNotFound)
		}
		s.LibrarySteps = append(s.LibrarySteps[:i], s.LibrarySteps[i+1:]...)
		items = append([]domain.LibraryStep{}, s.LibrarySteps...)
		return true, nil
	})
	return items, err
}

// MoveLibraryStep relocates one library template. Out-of-range indices are a no-op.
func (w *Workspace) MoveLibraryStep(from, to int) []domain.LibraryStep {
	var items []domain.LibraryStep
	_ = w.mutate("move_library_step", func(s *domain.AppState) (bool, error) {
		if !inRange(from, to, len(s.LibrarySteps)) || from == to {
			items = append([]domain.LibraryStep{}, s.LibrarySteps...)
			return false, nil
		}
		move(s.LibrarySteps, from, to)
		items = append([]domain.LibraryStep{}, s.LibrarySteps...)
		return true, nil
	})
	return items
}

// SaveStepToLibrary copies a step's title and code into a new library template.
// An empty stepID uses the selected step; with no selection it returns (nil, nil).
// The step is looked up in every group.
func (w *Workspace) SaveStepToLibrary(stepID string) (*domain.LibraryStep, error) {
	var created *domain.LibraryStep
	err := w.mutate("save_step_to_library", func(s *domain.AppState) (bool, error) {
		if stepID == "" {
			stepID = domain.Deref(s.SelectedStepID)
			if stepID == "" {
				return false, nil
			}
		}
		step, ok := findAnyStep(s, stepID)
		if !ok {
			return false, fmt.Errorf("save step %q to library: %w", stepID, domain.ErrStepNotFound)
		}
		now := w.now()
		item := domain.LibraryStep{
			ID:        w.newID(),
			Title:     step.Title,
			Code:      step.Code,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.LibrarySteps = append(s.LibrarySteps, item)
		created = &item
		return true, nil
	})
	return created, err
}

// AddStepFromLibrary mints a fresh step from a template and inserts it into the
// active group at index at (clamped), or appends it when at is negative.
// The new step becomes selected.
func (w *Workspace) AddStepFromLibrary(libraryID string, at int) (domain.Step, error) {
	var created domain.Step
	err := w.mutate("add_step_from_library", func(s *domain.AppState) (bool, error) {
		i := s.LibraryIndex(libraryID)
		if i < 0 {
			return false, fmt.Errorf("add step from library %q: %w", libraryID, domain.ErrLibraryStepNotFound)
		}
		g, err := activeGroup(s)
		if err != nil {
			return false, fmt.Errorf("add step from library: %w", err)
		}
		tpl := s.LibrarySteps[i]
		now := w.now()
		created = domain.Step{
			ID:        w.newID(),
			Title:     tpl.Title,
			Code:      tpl.Code,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if at < 0 || at > len(g.Steps) {
			at = len(g.Steps)
		}
		g.Steps = append(g.Steps, domain.Step{})
		copy(g.Steps[at+1:], g.Steps[at:])
		g.Steps[at] = created
		g.UpdatedAt = w.stamp(g.UpdatedAt)
		s.SelectedStepID = domain.ID(created.ID)
		return true, nil
	})
	return created, err
}

// ImportLibrarySteps appends templates under fresh identities, keeping their
// titles and code. Used when loading a library pack.
func (w *Workspace) ImportLibrarySteps(items []domain.LibraryStep) []domain.LibraryStep {
	var imported []domain.LibraryStep
	_ = w.mutate("import_library_steps", func(s *domain.AppState) (bool, error) {
		if len(items) == 0 {
			return false, nil
		}
		now := w.now()
		for _, it := range items {
			item := domain.LibraryStep{
				ID:        w.newID(),
				Title:     it.Title,
				Code:      it.Code,
				CreatedAt: now,
				UpdatedAt: now,
			}
			s.LibrarySteps = append(s.LibrarySteps, item)
			imported = append(imported, item)
		}
		return true, nil
	})
	return imported
}

func findAnyStep(s *domain.AppState, id string) (domain.Step, bool) {
	for _, g := range s.StepGroups {
		if i := g.StepIndex(id); i >= 0 {
			return g.Steps[i], true
		}
	}
	return domain.Step{}, false
}
