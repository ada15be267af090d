package workspace

import (
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

// AddGroup appends a new group titled "Group N" and selects it.
func (w *Workspace) AddGroup() domain.StepGroup {
	var created domain.StepGroup
	_ = w.mutate("add_group", func(s *domain.AppState) (bool, error) {
		now := w.now()
		created = domain.StepGroup{
			ID:        w.newID(),
			Title:     defaultTitle("Group", len(s.StepGroups)+1),
			Steps:     []domain.Step{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.StepGroups = append(s.StepGroups, created)
		s.SelectedGroupID = domain.ID(created.ID)
		s.SelectedStepID = nil
		return true, nil
	})
	return created.Clone()
}

// UpdateGroupTitle renames a group.
func (w *Workspace) UpdateGroupTitle(id, title string) (domain.StepGroup, error) {
	var updated domain.StepGroup
	err := w.mutate("update_group_title", func(s *domain.AppState) (bool, error) {
		i := s.GroupIndex(id)
		if i < 0 {
			return false, fmt.Errorf("update group %q: %w", id, domain.ErrGroupNotFound)
		}
		g := &s.StepGroups[i]
		g.Title = title
		g.UpdatedAt = w.stamp(g.UpdatedAt)
		updated = g.Clone()
		return true, nil
	})
	return updated, err
}

// DeleteGroup removes a group and its steps. When the deleted group was
// selected, the first remaining group (or none) becomes the selection.
func (w *Workspace) DeleteGroup(id string) ([]domain.StepGroup, error) {
	var groups []domain.StepGroup
	err := w.mutate("delete_group", func(s *domain.AppState) (bool, error) {
		i := s.GroupIndex(id)
		if i < 0 {
			return false, fmt.Errorf("delete group %q: %w", id, domain.ErrGroupNotFound)
		}
		s.StepGroups = append(s.StepGroups[:i], s.StepGroups[i+1:]...)

		if domain.Deref(s.SelectedGroupID) == id {
			s.SelectedGroupID = nil
			s.SelectedStepID = nil
			if len(s.StepGroups) > 0 {
				selectGroup(s, &s.StepGroups[0])
			}
		}
		groups = s.Clone().StepGroups
		return true, nil
	})
	return groups, err
}

// SelectGroup makes the group active. An empty id clears the selection.
// The step selection moves to the first step of the newly active group.
func (w *Workspace) SelectGroup(id string) error {
	return w.mutate("select_group", func(s *domain.AppState) (bool, error) {
		if id == "" {
			changed := s.SelectedGroupID != nil || s.SelectedStepID != nil
			s.SelectedGroupID = nil
			s.SelectedStepID = nil
			return changed, nil
		}
		i := s.GroupIndex(id)
		if i < 0 {
			return false, fmt.Errorf("select group %q: %w", id, domain.ErrGroupNotFound)
		}
		if domain.Deref(s.SelectedGroupID) == id {
			return false, nil
		}
		selectGroup(s, &s.StepGroups[i])
		return true, nil
	})
}

// SetInputText stores the raw input on the active group.
func (w *Workspace) SetInputText(text string) error {
	return w.mutate("set_input_text", func(s *domain.AppState) (bool, error) {
		g, err := activeGroup(s)
		if err != nil {
			return false, fmt.Errorf("set input: %w", err)
		}
		if g.InputText == text {
			return false, nil
		}
		g.InputText = text
		g.UpdatedAt = w.stamp(g.UpdatedAt)
		return true, nil
	})
}

func selectGroup(s *domain.AppState, g *domain.StepGroup) {
	s.SelectedGroupID = domain.ID(g.ID)
	s.SelectedStepID = nil
	if len(g.Steps) > 0 {
		s.SelectedStepID = domain.ID(g.Steps[0].ID)
	}
}
