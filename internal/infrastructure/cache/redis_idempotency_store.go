package cache

import (
	"context"
	"fmt"
	"time"

	apppayment "github.com/afyapos/backend/internal/application/payment"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// This is suitable for distributed deployments where multiple instances
// need to share callback deduplication state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store.
// Keys live for the given retention window; after that a replayed callback
// key is treated as new, which is safe because transaction state is also
// checked before any callback is applied.
func NewRedisIdempotencyStore(cfg RedisConfig, retention time.Duration) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: "idempotency:",
		retention: retention,
	}, nil
}

// NewRedisIdempotencyStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string, retention time.Duration) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "idempotency:"
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
		retention: retention,
	}
}

// Seen reports whether a key is already marked, without marking it
func (s *RedisIdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key: %w", err)
	}
	return count > 0, nil
}

// MarkOnce marks a key as seen. Returns true if the key was newly marked,
// false if it was already present. Uses SETNX for an atomic check-and-set.
func (s *RedisIdempotencyStore) MarkOnce(ctx context.Context, key string) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark key: %w", err)
	}
	return result, nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ apppayment.IdempotencyStore = (*RedisIdempotencyStore)(nil)
