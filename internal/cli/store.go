package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/pkg/adapters/file"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/adapters/redis"
	"github.com/aretw0/stepwise/pkg/adapters/sqlite"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/ports"
)

const sqliteFile = "stepwise.db"

// OpenStore builds the configured KVStore, wrapped with redaction and
// encryption when configured. The returned func releases the backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.KVStore, func() error, error) {
	var (
		store   ports.KVStore
		closeFn = func() error { return nil }
	)

	sc := cfg.Storage
	switch sc.Backend {
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendFile:
		store = file.New(sc.Path)
	case config.BackendSQLite:
		path := sc.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, sqliteFile)
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = db, db.Close
	case config.BackendRedis:
		rc := sc.Redis
		rdb, err := redis.Connect(ctx, rc.Addr, rc.Password, rc.DB, rc.ConnectTimeout,
			redis.WithPrefix(rc.Prefix),
			redis.WithTTL(rc.TTL),
		)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = rdb, rdb.Close
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
	}

	var mws []middleware.Middleware
	if len(sc.Redact) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(sc.Redact))
	}
	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}

	logger.Debug("store opened", "backend", sc.Backend, "encrypted", active != nil, "redacted", len(sc.Redact) > 0)
	return middleware.Chain(store, mws...), closeFn, nil
}
