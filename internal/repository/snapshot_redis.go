package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisSnapshotRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSnapshotRepository creates a SnapshotRepository backed by Redis.
// A zero ttl stores snapshots without expiry.
func NewRedisSnapshotRepository(client *redis.Client, prefix string, ttl time.Duration) SnapshotRepository {
	return &redisSnapshotRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *redisSnapshotRepository) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *redisSnapshotRepository) Save(ctx context.Context, key string, payload []byte) error {
	if err := r.client.Set(ctx, r.key(key), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *redisSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return payload, nil
}

func (r *redisSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
