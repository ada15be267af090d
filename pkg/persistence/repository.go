package persistence

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/schema"
)

// Repository implements ports.StateRepository over a KVStore key.
type Repository struct {
	kv     ports.KVStore
	key    string
	logger *slog.Logger
}

// Option configures the Repository.
type Option func(*Repository)

// WithKey overrides the storage key (domain.DefaultStorageKey by default).
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository creates a Repository.
func NewRepository(kv ports.KVStore, opts ...Option) *Repository {
	r := &Repository{
		kv:     kv,
		key:    domain.DefaultStorageKey,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.StateRepository = (*Repository)(nil)

// Key returns the storage key.
func (r *Repository) Key() string { return r.key }

// Load returns the stored state, or the empty state when nothing usable is stored.
func (r *Repository) Load(ctx context.Context) domain.AppState {
	data, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("no stored state", "key", r.key)
		} else {
			r.logger.Warn("failed to read stored state", "key", r.key, "error", err)
		}
		return domain.EmptyState()
	}

	state, err := schema.Decode(data)
	if err != nil {
		r.logger.Warn("discarding stored state", "key", r.key, "error", err)
		return domain.EmptyState()
	}
	return state
}

// Save writes the state. It reports whether the write succeeded.
func (r *Repository) Save(ctx context.Context, state domain.AppState) bool {
	data, err := schema.Encode(state)
	if err != nil {
		r.logger.Warn("failed to encode state", "error", err)
		return false
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		r.logger.Warn("failed to save state", "key", r.key, "error", err)
		return false
	}
	return true
}

// Clear removes the stored state.
func (r *Repository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, r.key)
}
