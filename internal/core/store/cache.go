package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/movelens/movelens/internal/core"
)

// GetCachedPayload returns a cached upstream payload if it has not expired.
func (s *Store) GetCachedPayload(ctx context.Context, resource, key string) (*core.CachedPayload, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	resource, key, err = payloadKey(resource, key)
	if err != nil {
		return nil, err
	}

	var (
		payload   []byte
		fetchedAt int64
		expiresAt int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT payload, fetched_at, expires_at
		FROM payload_cache
		WHERE resource = ? AND cache_key = ? AND expires_at > ?
	`, resource, key, s.now().Unix())

	if err := row.Scan(&payload, &fetchedAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached payload: %w", err)
	}

	return &core.CachedPayload{
		Resource:  resource,
		Key:       key,
		Payload:   payload,
		FetchedAt: time.Unix(fetchedAt, 0).UTC(),
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}, nil
}

// SetCachedPayload stores an upstream payload with a TTL. A non-positive TTL
// is a no-op.
func (s *Store) SetCachedPayload(ctx context.Context, resource, key string, payload []byte, ttl time.Duration) error {
	ctx, err := s.ready(ctx)
	if err != nil {
		return err
	}

	if ttl <= 0 || len(payload) == 0 {
		return nil
	}

	resource, key, err = payloadKey(resource, key)
	if err != nil {
		return err
	}

	now := s.now()
	expires := now.Add(ttl)

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO payload_cache (resource, cache_key, payload, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(resource, cache_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, resource, key, payload, now.Unix(), expires.Unix())
	if err != nil {
		return fmt.Errorf("store cached payload: %w", err)
	}

	return nil
}

// PurgePayloads deletes cached payloads. With expiredOnly set, only entries
// past their expiry are removed. An empty resource matches every resource.
func (s *Store) PurgePayloads(ctx context.Context, resource string, expiredOnly bool) (int64, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return 0, err
	}

	clauses := []string{}
	args := []any{}
	if resource = strings.TrimSpace(resource); resource != "" {
		clauses = append(clauses, "resource = ?")
		args = append(args, resource)
	}
	if expiredOnly {
		clauses = append(clauses, "expires_at <= ?")
		args = append(args, s.now().Unix())
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM payload_cache
		%s
	`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("purge cached payloads: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cached payloads: %w", err)
	}
	return affected, nil
}

// PayloadStats reports cache occupancy grouped by resource.
func (s *Store) PayloadStats(ctx context.Context) ([]core.PayloadStats, error) {
	ctx, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT resource,
			COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(LENGTH(payload)), 0),
			MAX(fetched_at)
		FROM payload_cache
		GROUP BY resource
		ORDER BY resource
	`, s.now().Unix())
	if err != nil {
		return nil, fmt.Errorf("payload stats: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	stats := []core.PayloadStats{}
	for rows.Next() {
		var entry core.PayloadStats
		var lastFetched int64
		if err := rows.Scan(&entry.Resource, &entry.Entries, &entry.Expired, &entry.Bytes, &lastFetched); err != nil {
			return nil, fmt.Errorf("scan payload stats: %w", err)
		}
		entry.LastFetched = time.Unix(lastFetched, 0).UTC()
		stats = append(stats, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payload stats: %w", err)
	}

	return stats, nil
}

func payloadKey(resource, key string) (string, string, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return "", "", errors.New("cache resource is required")
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", errors.New("cache key is required")
	}
	return resource, key, nil
}
