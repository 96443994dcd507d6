package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type migration struct {
	version    int
	statements []string
}

// migrations run in order. Append only; never edit a shipped migration.
var migrations = []migration{
	{version: 1, statements: []string{
		`CREATE TABLE IF NOT EXISTS payload_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource TEXT NOT NULL,
			cache_key TEXT NOT NULL,
			payload BLOB NOT NULL,
			fetched_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			UNIQUE(resource, cache_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payload_cache_expires ON payload_cache(expires_at)`,
	}},
	{version: 2, statements: []string{
		`CREATE TABLE IF NOT EXISTS rate_limits (
			endpoint TEXT PRIMARY KEY,
			request_count INTEGER NOT NULL DEFAULT 0,
			window_start INTEGER NOT NULL,
			backoff_until INTEGER,
			last_429_at INTEGER
		)`,
	}},
}

// Migrate brings the schema up to the latest version. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion returns the last applied migration, or 0 on a fresh database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return 0, err
	}

	var version sql.NullInt64
	err = s.DB.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func (s *Store) apply(ctx context.Context, m migration) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// LatestSchemaVersion is the version Migrate converges on.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}
