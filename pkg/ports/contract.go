package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVStoreContract runs a suite of tests to verify that a KVStore implementation
// adheres to the defined interface contract.
func RunKVStoreContract(t *testing.T, store KVStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := store.Set(ctx, key, []byte(`{"version":1}`))
		require.NoError(t, err, "Set should not return error")

		got, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, `{"version":1}`, string(got))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte("first")))
		require.NoError(t, store.Set(ctx, key, []byte("second")))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte("value")))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Get after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key is not an error")
	})

	t.Run("Keys", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = store.Set(ctx, k1, []byte("a"))
		_ = store.Set(ctx, k2, []byte("b"))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}

// RunStateRepositoryContract verifies the load/save contract of a StateRepository.
// The repository must start empty.
func RunStateRepositoryContract(t *testing.T, repo StateRepository) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		assert.Equal(t, domain.EmptyState(), repo.Load(ctx))
	})

	t.Run("Round Trip", func(t *testing.T) {
		state := domain.AppState{
			StepGroups: []domain.StepGroup{{
				ID:        "g1",
				Title:     "Group 1",
				InputText: "hello",
				Steps: []domain.Step{
					{ID: "s1", Title: "Step 1", Code: "return input.toUpperCase();", CreatedAt: 1, UpdatedAt: 2},
					{ID: "s2", Title: "Step 2", Code: "return input + '!';", Muted: true, CreatedAt: 1, UpdatedAt: 1},
				},
				CreatedAt: 1,
				UpdatedAt: 2,
			}},
			SelectedGroupID: domain.ID("g1"),
			SelectedStepID:  domain.ID("s2"),
			LibrarySteps: []domain.LibraryStep{
				{ID: "l1", Title: "Trim", Code: "return helpers.trim(input);", CreatedAt: 3, UpdatedAt: 3},
			},
		}

		require.True(t, repo.Save(ctx, state), "Save should persist")
		assert.Equal(t, state, repo.Load(ctx))
	})
}
