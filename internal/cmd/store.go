package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core/store"
)

func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return openStoreWithConfig(ctx, cfg)
}

func openStoreWithConfig(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// storeLocation resolves where cfg points the store: the remote URL, or the
// absolute path of the local database file.
func storeLocation(cfg *config.Config) (location string, remote bool) {
	if cfg == nil {
		return config.DefaultStorePath(), false
	}
	if cfg.Store.URL != "" {
		return cfg.Store.URL, true
	}
	location = cfg.Store.Path
	if location == "" {
		location = config.DefaultStorePath()
	}
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	return location, false
}

// getDBPath returns the store location from the last loaded config.
func getDBPath() string {
	location, _ := storeLocation(config.GetConfig())
	return location
}
