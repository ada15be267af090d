package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Migration converts a decoded envelope of one version into a fully defaulted state.
type Migration func(raw map[string]any) (domain.AppState, error)

// migrations is keyed by the envelope version it accepts.
var migrations = map[int64]Migration{
	1: migrateV1,
}

var envelopeSchema = Schema{
	"version":         Int(),
	"selectedGroupId": Optional(Nullable(String())),
	"selectedStepId":  Optional(Nullable(String())),
}

// Decode parses a stored payload into an AppState.
// It returns an error when the payload is not a JSON object, when the top-level
// shape is invalid, or when no migration exists for its version.
func Decode(data []byte) (domain.AppState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return domain.AppState{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if raw == nil {
		return domain.AppState{}, fmt.Errorf("%w: null payload", ErrInvalidEnvelope)
	}
	return Migrate(raw)
}

// Migrate dispatches a decoded envelope to the migration registered for its version.
func Migrate(raw map[string]any) (domain.AppState, error) {
	if err := Validate(envelopeSchema, raw); err != nil {
		return domain.AppState{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	version, _ := AsInt(raw["version"])
	migrate, ok := migrations[version]
	if !ok {
		return domain.AppState{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return migrate(raw)
}

var (
	entityID = Custom("id", func(v any) error {
		if id, ok := v.(string); !ok || id == "" {
			return fmt.Errorf("expected non-empty string, got %#v", v)
		}
		return nil
	})

	stepSchema = Schema{
		"id":        entityID,
		"title":     Optional(String()),
		"code":      Optional(String()),
		"muted":     Optional(Bool()),
		"createdAt": Optional(Int()),
		"updatedAt": Optional(Int()),
	}

	groupSchema = Schema{
		"id":        entityID,
		"title":     Optional(String()),
		"inputText": Optional(Nullable(String())),
		"createdAt": Optional(Int()),
		"updatedAt": Optional(Int()),
	}

	librarySchema = Schema{
		"id":        entityID,
		"title":     Optional(String()),
		"code":      Optional(String()),
		"createdAt": Optional(Int()),
		"updatedAt": Optional(Int()),
	}
)

func migrateV1(raw map[string]any) (domain.AppState, error) {
	state := domain.EmptyState()

	seenGroups := make(map[string]bool)
	for _, item := range objects(raw["stepGroups"], groupSchema) {
		id := item["id"].(string)
		if seenGroups[id] {
			continue
		}
		seenGroups[id] = true

		created, updated := timestamps(item)
		group := domain.StepGroup{
			ID:        id,
			Title:     stringOr(item["title"], fmt.Sprintf("Group %d", len(state.StepGroups)+1)),
			Steps:     []domain.Step{},
			InputText: stringOr(item["inputText"], ""),
			CreatedAt: created,
			UpdatedAt: updated,
		}

		seenSteps := make(map[string]bool)
		for _, s := range objects(item["steps"], stepSchema) {
			stepID := s["id"].(string)
			if seenSteps[stepID] {
				continue
			}
			seenSteps[stepID] = true

			created, updated := timestamps(s)
			muted, _ := s["muted"].(bool)
			group.Steps = append(group.Steps, domain.Step{
				ID:        stepID,
				Title:     stringOr(s["title"], fmt.Sprintf("Step %d", len(group.Steps)+1)),
				Code:      stringOr(s["code"], domain.DefaultStepCode),
				Muted:     muted,
				CreatedAt: created,
				UpdatedAt: updated,
			})
		}
		state.StepGroups = append(state.StepGroups, group)
	}

	seenLibrary := make(map[string]bool)
	for _, item := range objects(raw["librarySteps"], librarySchema) {
		id := item["id"].(string)
		if seenLibrary[id] {
			continue
		}
		seenLibrary[id] = true

		created, updated := timestamps(item)
		state.LibrarySteps = append(state.LibrarySteps, domain.LibraryStep{
			ID:        id,
			Title:     stringOr(item["title"], fmt.Sprintf("Library Step %d", len(state.LibrarySteps)+1)),
			Code:      stringOr(item["code"], domain.DefaultStepCode),
			CreatedAt: created,
			UpdatedAt: updated,
		})
	}

	if id, ok := raw["selectedGroupId"].(string); ok && state.GroupIndex(id) >= 0 {
		state.SelectedGroupID = domain.ID(id)
	}
	if id, ok := raw["selectedStepId"].(string); ok {
		if g := state.ActiveGroup(); g != nil && g.StepIndex(id) >= 0 {
			state.SelectedStepID = domain.ID(id)
		}
	}

	return state, nil
}

// objects returns the elements of an array value that are objects conforming to s.
// A value that is not an array yields no elements.
// objects keeps the elements of value that are objects matching s.
// Anything other than an array yields nil.
func objects(value any, s Schema) []map[string]any {
	if Array().Validate(value) != nil {
		return nil
	}
	arr := value.([]any)
	out := make([]map[string]any, 0, len(arr))
	for _, elem := range arr {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		if err := Validate(s, obj); err != nil {
			continue
		}
		out = append(out, obj)
	}
	return out
}

func stringOr(value any, fallback string) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fallback
}

// timestamps reads createdAt/updatedAt and enforces updatedAt >= createdAt.
func timestamps(obj map[string]any) (int64, int64) {
	created, _ := AsInt(obj["createdAt"])
	updated, ok := AsInt(obj["updatedAt"])
	if !ok || updated < created {
		updated = created
	}
	return created, updated
}
