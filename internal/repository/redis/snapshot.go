package redis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/domain"
)

const snapshotKeyPrefix = "hive:snapshot:"

var ErrSnapshotNotFound = errors.New("no cached snapshot")

// SnapshotCache keeps the most recent STATE snapshot seen for each match
// endpoint so a restarted client can show the board before the server
// resends it.
type SnapshotCache struct {
	repo CacheRepository
	ttl  time.Duration
}

func NewSnapshotCache(repo CacheRepository, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SnapshotCache{repo: repo, ttl: ttl}
}

// SnapshotKey is hive:snapshot:<host><path>; the scheme and query are ignored
// so ws and wss URLs of one match share an entry.
func SnapshotKey(endpoint *url.URL) string {
	return snapshotKeyPrefix + endpoint.Host + endpoint.Path
}

func (c *SnapshotCache) SaveSnapshot(ctx context.Context, endpoint *url.URL, state *domain.GameState) error {
	if state == nil {
		return domain.ErrInvalidSnapshot
	}
	if err := c.repo.Set(ctx, SnapshotKey(endpoint), state.String(), c.ttl); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns ErrSnapshotNotFound when nothing is cached. A stored
// value that no longer parses is evicted.
func (c *SnapshotCache) LatestSnapshot(ctx context.Context, endpoint *url.URL) (*domain.GameState, error) {
	key := SnapshotKey(endpoint)
	raw, err := c.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	state, err := domain.ParseGameState(raw)
	if err != nil {
		_ = c.repo.Del(ctx, key)
		return nil, fmt.Errorf("%w: %v", ErrSnapshotNotFound, err)
	}
	return state, nil
}

func (c *SnapshotCache) Forget(ctx context.Context, endpoint *url.URL) error {
	return c.repo.Del(ctx, SnapshotKey(endpoint))
}
