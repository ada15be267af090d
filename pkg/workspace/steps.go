package workspace

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

// AddStep appends a new step titled "Step N" with the identity transform.
// An empty groupID targets the active group. The new step is selected when
// its group is active.
func (w *Workspace) AddStep(groupID string) (domain.Step, error) {
	var created domain.Step
	err := w.mutate("add_step", func(s *domain.AppState) (bool, error) {
		if groupID == "" {
			groupID = domain.Deref(s.SelectedGroupID)
			if groupID == "" {
				return false, fmt.Errorf("add step: %w", domain.ErrNoActiveGroup)
			}
		}
		i := s.GroupIndex(groupID)
		if i < 0 {
			return false, fmt.Errorf("add step to %q: %w", groupID, domain.ErrGroupNotFound)
		}
		g := &s.StepGroups[i]
		now := w.now()
		created = domain.Step{
			ID:        w.newID(),
			Title:     defaultTitle("Step", len(g.Steps)+1),
			Code:      domain.DefaultStepCode,
			CreatedAt: now,
			UpdatedAt: now,
		}
		g.Steps = append(g.Steps, created)
		g.UpdatedAt = w.stamp(g.UpdatedAt)
		if domain.Deref(s.SelectedGroupID) == g.ID {
			s.SelectedStepID = domain.ID(created.ID)
		}
		return true, nil
	})
	return created, err
}

// UpdateStep applies a partial update to a step of the active group.
func (w *Workspace) UpdateStep(id string, patch domain.StepPatch) (domain.Step, error) {
	var updated domain.Step
	err := w.mutate("update_step", func(s *domain.AppState) (bool, error) {
		g, idx, err := findActiveStep(s, id)
		if err != nil {
			return false, fmt.Errorf("update step: %w", err)
		}
		step := &g.Steps[idx]
		if patch.Empty() {
			updated = *step
			return false, nil
		}
		patch.Apply(step)
		step.UpdatedAt = w.stamp(step.UpdatedAt)
		g.UpdatedAt = w.stamp(g.UpdatedAt)
		updated = *step
		return true, nil
	})
	return updated, err
}

// DeleteStep removes a step of the active group. When it was selected, the
// selection falls back to the new first step or to none.
func (w *Workspace) DeleteStep(id string) ([]domain.Step, error) {
	var steps []domain.Step
	err := w.mutate("delete_step", func(s *domain.AppState) (bool, error) {
		g, idx, err := findActiveStep(s, id)
		if err != nil {
			return false, fmt.Errorf("delete step: %w", err)
		}
		g.Steps = append(g.Steps[:idx], g.Steps[idx+1:]...)
		g.UpdatedAt = w.stamp(g.UpdatedAt)

		if domain.Deref(s.SelectedStepID) == id {
			s.SelectedStepID = nil
			if len(g.Steps) > 0 {
				s.SelectedStepID = domain.ID(g.Steps[0].ID)
			}
		}
		steps = g.Clone().Steps
		return true, nil
	})
	return steps, err
}

// SelectStep selects a step of the active group. An empty id clears the selection.
func (w *Workspace) SelectStep(id string) error {
	return w.mutate("select_step", func(s *domain.AppState) (bool, error) {
		if id == "" {
			changed := s.SelectedStepID != nil
			s.SelectedStepID = nil
			return changed, nil
		}
		if _, _, err := findActiveStep(s, id); err != nil {
			return false, fmt.Errorf("select step: %w", err)
		}
		if domain.Deref(s.SelectedStepID) == id {
			return false, nil
		}
		s.SelectedStepID = domain.ID(id)
		return true, nil
	})
}

// MoveStep relocates one step of the active group. Indices out of range on
// either side leave the sequence unchanged.
func (w *Workspace) MoveStep(from, to int) ([]domain.Step, error) {
	var steps []domain.Step
	err := w.mutate("move_step", func(s *domain.AppState) (bool, error) {
		g, err := activeGroup(s)
		if err != nil {
			return false, fmt.Errorf("move step: %w", err)
		}
		steps = g.Clone().Steps
		if !inRange(from, to, len(g.Steps)) || from == to {
			return false, nil
		}
		move(g.Steps, from, to)
		g.UpdatedAt = w.stamp(g.UpdatedAt)
		steps = g.Clone().Steps
		return true, nil
	})
	return steps, err
}

// FindStep returns a copy of a step of the active group.
func (w *Workspace) FindStep(id string) (domain.Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, idx, err := findActiveStep(&w.state, id)
	if err != nil {
		return domain.Step{}, err
	}
	return g.Steps[idx], nil
}

func findActiveStep(s *domain.AppState, id string) (*domain.StepGroup, int, error) {
	g, err := activeGroup(s)
	if err != nil {
		return nil, -1, err
	}
	idx := g.StepIndex(id)
	if idx < 0 {
		return nil, -1, fmt.Errorf("%q: %w", id, domain.ErrStepNotFound)
	}
	return g, idx, nil
}
