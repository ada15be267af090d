package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// KVStore defines the local key-value store the persisted envelope lives in.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key.
	Keys(ctx context.Context) ([]string, error)
}

// StateRepository reads and writes the application envelope.
// Both operations fail silently: Load falls back to domain.EmptyState and Save
// reports whether the state was persisted instead of returning an error.
type StateRepository interface {
	Load(ctx context.Context) domain.AppState
	Save(ctx context.Context, state domain.AppState) bool
}
