package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/shared"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/config"
)

// RedisProcessedStore implements ProcessedStore on Redis, so parallel
// migration workers pointed at the same store share processed-item state
type RedisProcessedStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisProcessedStore connects to Redis and verifies the connection
func NewRedisProcessedStore(cfg config.RedisConfig) (*RedisProcessedStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProcessedStore{
		client:    client,
		keyPrefix: "migration:processed:",
	}, nil
}

// NewRedisProcessedStoreWithClient wraps an existing client, useful for tests
// and for sharing one client across components
func NewRedisProcessedStoreWithClient(client *redis.Client, keyPrefix string) *RedisProcessedStore {
	if keyPrefix == "" {
		keyPrefix = "migration:processed:"
	}
	return &RedisProcessedStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed marks an item as handled with a TTL using SETNX, so exactly
// one of two racing workers observes a fresh marker
func (s *RedisProcessedStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	set, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark item as processed: %w", err)
	}
	return set, nil
}

// IsProcessed checks if an item has already been handled
func (s *RedisProcessedStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check processed state: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisProcessedStore) Close() error {
	return s.client.Close()
}

var _ shared.ProcessedStore = (*RedisProcessedStore)(nil)
