package redis

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setCall struct {
	key        string
	value      interface{}
	expiration time.Duration
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	sets   []setCall
	err    error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sets = append(m.sets, setCall{key: key, value: value, expiration: expiration})
	m.values[key] = value.(string)
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	value, ok := m.values[key]
	if !ok {
		return "", ErrSnapshotNotFound
	}
	return value, nil
}

func (m *memoryCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestSnapshotKeyIgnoresSchemeAndQuery(t *testing.T) {
	plain := mustURL(t, "ws://hive.example.com/match/42")
	secure := mustURL(t, "wss://hive.example.com/match/42?spectate=drone")

	assert.Equal(t, "hive:snapshot:hive.example.com/match/42", SnapshotKey(plain))
	assert.Equal(t, SnapshotKey(plain), SnapshotKey(secure))
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	repo := newMemoryCache()
	cache := NewSnapshotCache(repo, 15*time.Minute)
	endpoint := mustURL(t, "ws://localhost:8080/ws")
	ctx := context.Background()

	_, err := cache.LatestSnapshot(ctx, endpoint)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	state, err := domain.ParseGameState("Base+M;InProgress;Black[1];wS1")
	require.NoError(t, err)
	require.NoError(t, cache.SaveSnapshot(ctx, endpoint, state))

	require.Len(t, repo.sets, 1)
	assert.Equal(t, 15*time.Minute, repo.sets[0].expiration)
	assert.Equal(t, "Base+M;InProgress;Black[1];wS1", repo.sets[0].value)

	cached, err := cache.LatestSnapshot(ctx, endpoint)
	require.NoError(t, err)
	assert.Equal(t, state.String(), cached.String())

	require.NoError(t, cache.Forget(ctx, endpoint))
	_, err = cache.LatestSnapshot(ctx, endpoint)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotCacheEvictsCorruptEntries(t *testing.T) {
	repo := newMemoryCache()
	cache := NewSnapshotCache(repo, 0)
	endpoint := mustURL(t, "ws://localhost:8080/ws")
	repo.values[SnapshotKey(endpoint)] = "not a snapshot"

	_, err := cache.LatestSnapshot(context.Background(), endpoint)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.NotContains(t, repo.values, SnapshotKey(endpoint))
}

func TestSnapshotCacheWrapsBackendErrors(t *testing.T) {
	repo := newMemoryCache()
	repo.err = errors.New("connection refused")
	cache := NewSnapshotCache(repo, time.Minute)
	endpoint := mustURL(t, "ws://localhost:8080/ws")

	err := cache.SaveSnapshot(context.Background(), endpoint, domain.NewGameState())
	assert.ErrorContains(t, err, "connection refused")

	_, err = cache.LatestSnapshot(context.Background(), endpoint)
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)

	assert.ErrorIs(t, cache.SaveSnapshot(context.Background(), endpoint, nil), domain.ErrInvalidSnapshot)
}
