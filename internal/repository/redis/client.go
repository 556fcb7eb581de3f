package redis

import (
	"context"
	"log"
	"time"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/config"
	"github.com/redis/go-redis/v9"
)

// CacheRepository is the subset of redis the snapshot cache needs.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// InitRedis connects to the configured server. A nil client with a nil error
// means redis is not configured or unreachable and caching is skipped.
func InitRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Println("[REDIS] REDIS_URL not set, snapshot cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("[REDIS] Warning: Could not connect to Redis: %v. Snapshot cache disabled.", err)
		client.Close()
		return nil, nil
	}

	log.Println("[REDIS] Connected successfully")
	return client, nil
}

// RedisCache adapts *redis.Client to CacheRepository.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get returns ErrSnapshotNotFound for a missing key.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrSnapshotNotFound
	}
	return value, err
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
