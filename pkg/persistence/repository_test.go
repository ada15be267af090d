package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/pkg/adapters/file"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/persistence"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/ports"
)

// failingStore fails every operation.
type failingStore struct{}

var errBackend = errors.New("backend down")

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errBackend }
func (failingStore) Set(context.Context, string, []byte) error { return errBackend }
func (failingStore) Delete(context.Context, string) error { return errBackend }
func (failingStore) Keys(context.Context) ([]string, error) { return nil, errBackend }

func TestRepository_Contract_Memory(t *testing.T) {
	ports.RunStateRepositoryContract(t, persistence.NewRepository(memory.NewStore()))
}

func TestRepository_Contract_File(t *testing.T) {
	ports.RunStateRepositoryContract(t, persistence.NewRepository(file.New(t.TempDir())))
}

func TestRepository_Contract_Encrypted(t *testing.T) {
	key := make([]byte, 32)
	kv := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(memory.NewStore())
	ports.RunStateRepositoryContract(t, persistence.NewRepository(kv))
}

func TestRepository_LoadFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{{{"},
		{"wrong version", `{"version":2,"stepGroups":[],"selectedGroupId":null,"selectedStepId":null,"librarySteps":[]}`},
		{"missing version", `{"stepGroups":[],"librarySteps":[]}`},
		{"top-level array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.NewStore()
			require.NoError(t, kv.Set(ctx, domain.DefaultStorageKey, []byte(tt.value)))

			repo := persistence.NewRepository(kv)
			assert.Equal(t, domain.EmptyState(), repo.Load(ctx))
		})
	}
}

func TestRepository_BackendFailuresAreSilent(t *testing.T) {
	repo := persistence.NewRepository(failingStore{})
	ctx := context.Background()

	assert.Equal(t, domain.EmptyState(), repo.Load(ctx))
	assert.False(t, repo.Save(ctx, domain.EmptyState()))
}

func TestRepository_CoercesMalformedArrays(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	raw := `{"version":1,"stepGroups":"oops","selectedGroupId":null,"selectedStepId":null,"librarySteps":{"a":1}}`
	require.NoError(t, kv.Set(ctx, "custom", []byte(raw)))

	repo := persistence.NewRepository(kv, persistence.WithKey("custom"))
	assert.Equal(t, "custom", repo.Key())
	assert.Equal(t, domain.EmptyState(), repo.Load(ctx))
}

func TestRepository_Clear(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	repo := persistence.NewRepository(kv)

	state := domain.EmptyState()
	state.LibrarySteps = append(state.LibrarySteps, domain.LibraryStep{ID: "l", Title: "T", Code: "return input;"})
	require.True(t, repo.Save(ctx, state))

	require.NoError(t, repo.Clear(ctx))
	assert.Equal(t, domain.EmptyState(), repo.Load(ctx))
}
