//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/movelens/movelens/internal/config"
	"github.com/movelens/movelens/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), config.StoreConfig{
		Driver: "libsql",
		Path:   "file:" + t.TempDir() + "/movelens.db",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestPayloadCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	miss, err := store.GetCachedPayload(ctx, "pokemon", "garchomp")
	require.NoError(t, err)
	require.Nil(t, miss)

	require.NoError(t, store.SetCachedPayload(ctx, "pokemon", "Garchomp", []byte(`{"name":"garchomp"}`), time.Hour))

	hit, err := store.GetCachedPayload(ctx, "pokemon", "garchomp")
	require.NoError(t, err)
	require.NotNil(t, hit)
	require.JSONEq(t, `{"name":"garchomp"}`, string(hit.Payload))
	require.True(t, hit.ExpiresAt.After(hit.FetchedAt))

	require.NoError(t, store.SetCachedPayload(ctx, "pokemon", "garchomp", []byte(`{"name":"garchomp","id":445}`), time.Hour))
	hit, err = store.GetCachedPayload(ctx, "pokemon", "garchomp")
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"garchomp","id":445}`, string(hit.Payload))
}

func TestPayloadCacheExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fetchedAt := now
	store.Clock = func() time.Time { return now }

	require.NoError(t, store.SetCachedPayload(ctx, "move", "earthquake", []byte(`{}`), time.Minute))
	require.NoError(t, store.SetCachedPayload(ctx, "move", "outrage", []byte(`{}`), time.Hour))
	require.NoError(t, store.SetCachedPayload(ctx, "pokemon", "garchomp", []byte(`{}`), time.Hour))

	now = now.Add(10 * time.Minute)

	expired, err := store.GetCachedPayload(ctx, "move", "earthquake")
	require.NoError(t, err)
	require.Nil(t, expired)

	stats, err := store.PayloadStats(ctx)
	require.NoError(t, err)
	require.Equal(t, []core.PayloadStats{
		{Resource: "move", Entries: 2, Expired: 1, Bytes: 4, LastFetched: fetchedAt},
		{Resource: "pokemon", Entries: 1, Expired: 0, Bytes: 2, LastFetched: fetchedAt},
	}, stats)

	removed, err := store.PurgePayloads(ctx, "", true)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	removed, err = store.PurgePayloads(ctx, "move", false)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	stats, err = store.PayloadStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, "pokemon", stats[0].Resource)
}

func TestStoreCheckHealth(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.CheckHealth(context.Background()))

	var empty *Store
	require.Error(t, empty.CheckHealth(context.Background()))
}

func TestPayloadCacheRejectsBlankKeys(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetCachedPayload(context.Background(), "", "garchomp")
	require.Error(t, err)
	require.Error(t, store.SetCachedPayload(context.Background(), "move", " ", []byte(`{}`), time.Hour))
}

func TestRateLimitAdmin(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	window := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateRateLimit(ctx, "pokeapi.co", &core.RateLimitState{RequestCount: 3, WindowStart: window}))
	require.NoError(t, store.UpdateRateLimit(ctx, "beta.pokeapi.co", &core.RateLimitState{RequestCount: 1, WindowStart: window}))

	state, err := store.GetRateLimit(ctx, "pokeapi.co")
	require.NoError(t, err)
	require.Equal(t, 3, state.RequestCount)
	require.True(t, window.Equal(state.WindowStart))

	entries, err := store.ListRateLimits(ctx, RateLimitQuery{All: true})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "beta.pokeapi.co", entries[0].Endpoint)

	count, err := store.CountRateLimits(ctx, RateLimitQuery{Prefix: "beta."})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	removed, err := store.ResetRateLimits(ctx, RateLimitQuery{Endpoint: "pokeapi.co"})
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = store.ListRateLimits(ctx, RateLimitQuery{})
	require.Error(t, err)
}
