package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type postgresSnapshotRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewPostgresSnapshotRepository creates a SnapshotRepository backed by the
// session_snapshots table. Rows older than ttl are treated as missing and
// removed by Purge; a zero ttl keeps them forever.
func NewPostgresSnapshotRepository(db *sql.DB, ttl time.Duration) SnapshotRepository {
	return &postgresSnapshotRepository{db: db, ttl: ttl}
}

// Save upserts the snapshot using parameterized queries
func (r *postgresSnapshotRepository) Save(ctx context.Context, key string, payload []byte) error {
	query := `
		INSERT INTO session_snapshots (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, payload); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot payload by key
func (r *postgresSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT payload FROM session_snapshots
		WHERE key = $1 AND ($2::bigint = 0 OR updated_at > NOW() - make_interval(secs => $2::bigint))
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key, int64(r.ttl.Seconds())).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return payload, nil
}

// Delete removes the snapshot; deleting a missing key is not an error
func (r *postgresSnapshotRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM session_snapshots WHERE key = $1`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Purge deletes snapshots older than the ttl
func (r *postgresSnapshotRepository) Purge(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	query := `DELETE FROM session_snapshots WHERE updated_at < NOW() - make_interval(secs => $1::bigint)`

	result, err := r.db.ExecContext(ctx, query, int64(r.ttl.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", err)
	}
	return result.RowsAffected()
}
