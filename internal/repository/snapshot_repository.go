package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrUnknownDriver    = errors.New("unknown snapshot driver")
)

// Snapshot drivers
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// SnapshotRepository defines durable storage for session snapshots.
// Payloads are opaque JSON documents owned by the stores.
type SnapshotRepository interface {
	Save(ctx context.Context, key string, payload []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Purger is implemented by repositories that expire snapshots themselves
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// OpenSnapshotRepository selects the repository for driver. The redis
// driver needs rdb and the postgres driver needs db.
func OpenSnapshotRepository(driver string, db *sql.DB, rdb *redis.Client, prefix string, ttl time.Duration) (SnapshotRepository, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemorySnapshotRepository(), nil
	case DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis snapshot driver requires REDIS_HOST")
		}
		return NewRedisSnapshotRepository(rdb, prefix, ttl), nil
	case DriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres snapshot driver requires a database connection")
		}
		return NewPostgresSnapshotRepository(db, ttl), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
