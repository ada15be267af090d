package schema_test

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTrip(t *testing.T) {
	state := domain.AppState{
		StepGroups: []domain.StepGroup{{
			ID:        "g1",
			Title:     "Group 1",
			InputText: "hello",
			Steps: []domain.Step{
				{ID: "s1", Title: "Upper", Code: "return input.toUpperCase();", CreatedAt: 1700000000000, UpdatedAt: 1700000000500},
			},
			CreatedAt: 1700000000000,
			UpdatedAt: 1700000000500,
		}},
		SelectedGroupID: domain.ID("g1"),
		SelectedStepID:  domain.ID("s1"),
		LibrarySteps:    []domain.LibraryStep{{ID: "l1", Title: "Trim", Code: "return helpers.trim(input);"}},
	}

	data, err := schema.Encode(state)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)

	got, err := schema.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestDecode_EmptyStateEncodesArrays(t *testing.T) {
	data, err := schema.Encode(domain.AppState{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"stepGroups":[],"selectedGroupId":null,"selectedStepId":null,"librarySteps":[]}`, string(data))
}

func TestDecode_RejectsEnvelope(t *testing.T) {
	cases := map[string]string{
		"wrong version":     `{"version":2,"stepGroups":[],"librarySteps":[]}`,
		"missing version":   `{"stepGroups":[],"librarySteps":[]}`,
		"string version":    `{"version":"1"}`,
		"fractional":        `{"version":1.5}`,
		"not an object":     `[1,2,3]`,
		"null":              `null`,
		"garbage":           `{{{`,
		"bad selected type": `{"version":1,"selectedGroupId":42}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schema.Decode([]byte(payload))
			assert.Error(t, err)
		})
	}
}

func TestDecode_UnsupportedVersionIsDistinguishable(t *testing.T) {
	_, err := schema.Decode([]byte(`{"version":0}`))
	assert.ErrorIs(t, err, schema.ErrUnsupportedVersion)

	_, err = schema.Decode([]byte(`{"version":"x"}`))
	assert.ErrorIs(t, err, schema.ErrInvalidEnvelope)
	assert.NotEmpty(t, schema.ValidationErrors(err))
}

func TestDecode_CoercesMalformedNestedArrays(t *testing.T) {
	payload := `{
		"version": 1,
		"stepGroups": {"not": "an array"},
		"selectedGroupId": null,
		"selectedStepId": null,
		"librarySteps": "nope"
	}`

	got, err := schema.Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, domain.EmptyState(), got)
}

func TestDecode_DropsMalformedItemsAndDefaultsFields(t *testing.T) {
	payload := `{
		"version": 1,
		"stepGroups": [
			{"id": "g1", "steps": [
				{"id": "s1"},
				{"title": "no id"},
				{"id": "", "title": "empty id"},
				{"id": "s1", "title": "duplicate"},
				{"id": "s2", "title": 7},
				"not an object",
				{"id": "s3", "code": "return 1;", "muted": true, "createdAt": 10, "updatedAt": 5}
			], "createdAt": 3},
			{"id": 99},
			{"id": "", "title": "empty id"},
			{"id": "g2", "title": "Second", "steps": null, "inputText": null}
		],
		"selectedGroupId": "g1",
		"selectedStepId": "s3",
		"librarySteps": [{"id": "l1"}, {"id": ""}]
	}`

	got, err := schema.Decode([]byte(payload))
	require.NoError(t, err)

	require.Len(t, got.StepGroups, 2)
	g1 := got.StepGroups[0]
	assert.Equal(t, "Group 1", g1.Title)
	assert.Equal(t, int64(3), g1.CreatedAt)
	assert.Equal(t, int64(3), g1.UpdatedAt)
	require.Len(t, g1.Steps, 2)
	assert.Equal(t, domain.Step{ID: "s1", Title: "Step 1", Code: domain.DefaultStepCode}, g1.Steps[0])
	assert.Equal(t, domain.Step{ID: "s3", Title: "Step 2", Code: "return 1;", Muted: true, CreatedAt: 10, UpdatedAt: 10}, g1.Steps[1])

	g2 := got.StepGroups[1]
	assert.Equal(t, "Second", g2.Title)
	assert.Equal(t, []domain.Step{}, g2.Steps)
	assert.Empty(t, g2.InputText)

	require.Len(t, got.LibrarySteps, 1)
	assert.Equal(t, "Library Step 1", got.LibrarySteps[0].Title)

	assert.Equal(t, "g1", domain.Deref(got.SelectedGroupID))
	assert.Equal(t, "s3", domain.Deref(got.SelectedStepID))
}

func TestDecode_ResetsDanglingSelections(t *testing.T) {
	payload := `{
		"version": 1,
		"stepGroups": [{"id": "g1", "steps": [{"id": "s1"}]}, {"id": "g2", "steps": [{"id": "s2"}]}],
		"selectedGroupId": "g1",
		"selectedStepId": "s2",
		"librarySteps": []
	}`
	got, err := schema.Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "g1", domain.Deref(got.SelectedGroupID))
	assert.Nil(t, got.SelectedStepID, "a step outside the active group is not a valid selection")

	got, err = schema.Decode([]byte(`{"version":1,"stepGroups":[],"selectedGroupId":"gone","librarySteps":[]}`))
	require.NoError(t, err)
	assert.Nil(t, got.SelectedGroupID)
}
