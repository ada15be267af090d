package schema

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Envelope is the wire shape of the persisted application state.
type Envelope struct {
	Version         int                  `json:"version"`
	StepGroups      []domain.StepGroup   `json:"stepGroups"`
	SelectedGroupID *string              `json:"selectedGroupId"`
	SelectedStepID  *string              `json:"selectedStepId"`
	LibrarySteps    []domain.LibraryStep `json:"librarySteps"`
}

// Wrap builds the current-version envelope for state.
func Wrap(state domain.AppState) Envelope {
	env := Envelope{
		Version:         domain.SchemaVersion,
		StepGroups:      state.StepGroups,
		SelectedGroupID: state.SelectedGroupID,
		SelectedStepID:  state.SelectedStepID,
		LibrarySteps:    state.LibrarySteps,
	}
	if env.StepGroups == nil {
		env.StepGroups = []domain.StepGroup{}
	}
	for i := range env.StepGroups {
		if env.StepGroups[i].Steps == nil {
			env.StepGroups[i] = env.StepGroups[i].Clone()
		}
	}
	if env.LibrarySteps == nil {
		env.LibrarySteps = []domain.LibraryStep{}
	}
	return env
}

// Encode serializes state as a current-version envelope.
func Encode(state domain.AppState) ([]byte, error) {
	data, err := json.Marshal(Wrap(state))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}
