package main

import (
	"context"
	"fmt"

	"github.com/brcurves/svenfit/internal/config"
	"github.com/brcurves/svenfit/internal/storage"
	"github.com/brcurves/svenfit/internal/storage/memory"
	"github.com/brcurves/svenfit/internal/storage/postgres"
)

// openStores builds the configured storage backend. The returned closer is
// a no-op for the memory backend.
func openStores(ctx context.Context, cfg config.Config) (storage.AttemptStore, storage.ObservationStore, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		return memory.NewAttemptStore(), memory.NewObservationStore(), func() {}, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewAttemptStore(pool), postgres.NewObservationStore(pool), pool.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
