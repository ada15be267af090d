package domain

// AppState is the persisted application snapshot.
// Transient execution state (scope, anchor, last output) is never part of it.
type AppState struct {
	StepGroups      []StepGroup   `json:"stepGroups"`
	SelectedGroupID *string       `json:"selectedGroupId"`
	SelectedStepID  *string       `json:"selectedStepId"`
	LibrarySteps    []LibraryStep `json:"librarySteps"`
}

// EmptyState returns the canonical empty state.
func EmptyState() AppState {
	return AppState{
		StepGroups:   []StepGroup{},
		LibrarySteps: []LibraryStep{},
	}
}

// Clone returns a deep copy so callers cannot mutate the owner's state by reference.
func (s AppState) Clone() AppState {
	out := AppState{
		StepGroups:      make([]StepGroup, len(s.StepGroups)),
		SelectedGroupID: cloneID(s.SelectedGroupID),
		SelectedStepID:  cloneID(s.SelectedStepID),
		LibrarySteps:    append([]LibraryStep{}, s.LibrarySteps...),
	}
	for i, g := range s.StepGroups {
		out.StepGroups[i] = g.Clone()
	}
	return out
}

// GroupIndex returns the position of the group with the given id, or -1.
func (s *AppState) GroupIndex(id string) int {
	for i := range s.StepGroups {
		if s.StepGroups[i].ID == id {
			return i
		}
	}
	return -1
}

// ActiveGroup returns the selected group, or nil when none is selected.
func (s *AppState) ActiveGroup() *StepGroup {
	if s.SelectedGroupID == nil {
		return nil
	}
	if i := s.GroupIndex(*s.SelectedGroupID); i >= 0 {
		return &s.StepGroups[i]
	}
	return nil
}

// LibraryIndex returns the position of the library step with the given id, or -1.
func (s *AppState) LibraryIndex(id string) int {
	for i := range s.LibrarySteps {
		if s.LibrarySteps[i].ID == id {
			return i
		}
	}
	return -1
}

// ID returns a pointer to a copy of id, the representation of a set selection.
func ID(id string) *string {
	return &id
}

// Deref returns the selected id, or "" for no selection.
func Deref(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	return ID(*id)
}
