// Package store persists the PokeAPI payload cache and per-host rate limit
// state in libsql, either a local file or a remote Turso database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/movelens/movelens/internal/config"
)

const (
	driverLibsql           = "libsql"
	localBusyTimeoutMillis = 5000
)

// ErrNotInitialized is returned by every method called on a nil or closed-over
// zero Store.
var ErrNotInitialized = errors.New("store is not initialized")

// Store wraps the database connection.
type Store struct {
	DB     *sql.DB
	driver string

	// Clock overrides the wall clock for expiry decisions.
	Clock func() time.Time
}

// Open connects to the configured database and verifies it with a ping.
// Local files get WAL mode and a single writer connection.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	driver := strings.TrimSpace(cfg.Driver)
	if driver == "" {
		driver = driverLibsql
	}
	if driver != driverLibsql {
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	dsn, err := buildLibsqlDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverLibsql, dsn)
	if err != nil {
		return nil, fmt.Errorf("open libsql store: %w", err)
	}

	setup := func() error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping libsql store: %w", err)
		}
		if isLocalDSN(dsn) {
			return configureLocal(ctx, db)
		}
		return nil
	}
	if err := setup(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: db, driver: driver}, nil
}

// ready guards every query method and substitutes a background context.
func (s *Store) ready(ctx context.Context) (context.Context, error) {
	if s == nil || s.DB == nil {
		return nil, ErrNotInitialized
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// CheckHealth pings the database for the server readiness probe.
func (s *Store) CheckHealth(ctx context.Context) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}
	return s.DB.PingContext(ctx)
}

func (s *Store) Driver() string {
	if s == nil {
		return ""
	}
	return s.driver
}

func (s *Store) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// configureLocal serialises writers on embedded files so concurrent move
// fetches do not trip SQLITE_BUSY.
func configureLocal(ctx context.Context, db *sql.DB) error {
	db.SetMaxOpenConns(1)

	pragmas := []struct{ name, stmt string }{
		{"enable wal journal", "PRAGMA journal_mode=WAL"},
		{"set busy timeout", fmt.Sprintf("PRAGMA busy_timeout=%d", localBusyTimeoutMillis)},
	}
	for _, p := range pragmas {
		// Both pragmas echo a row, so QueryRow rather than Exec.
		var ignored any
		if err := db.QueryRowContext(ctx, p.stmt).Scan(&ignored); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return nil
}
