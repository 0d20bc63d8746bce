package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"optic-storefront/internal/repository"
)

// SnapshotPersister stores a partial JSON snapshot of S under a fixed key.
// P is the persisted shape; toSnapshot and fromSnapshot convert between them.
type SnapshotPersister[S, P any] struct {
	repo         repository.SnapshotRepository
	key          string
	toSnapshot   func(S) P
	fromSnapshot func(P) S
	empty        func(S) bool
}

// NewSnapshotPersister creates a persister writing to repo under key
func NewSnapshotPersister[S, P any](repo repository.SnapshotRepository, key string, to func(S) P, from func(P) S) *SnapshotPersister[S, P] {
	return &SnapshotPersister[S, P]{
		repo:         repo,
		key:          key,
		toSnapshot:   to,
		fromSnapshot: from,
	}
}

// DeleteWhen makes Save remove the snapshot instead of writing it whenever
// empty reports true for the state.
func (p *SnapshotPersister[S, P]) DeleteWhen(empty func(S) bool) *SnapshotPersister[S, P] {
	p.empty = empty
	return p
}

// Load restores the snapshot. ok is false when nothing was persisted yet.
func (p *SnapshotPersister[S, P]) Load(ctx context.Context) (S, bool, error) {
	var zero S
	payload, err := p.repo.Load(ctx, p.key)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to load snapshot %s: %w", p.key, err)
	}

	var snap P
	if err := json.Unmarshal(payload, &snap); err != nil {
		return zero, false, fmt.Errorf("failed to decode snapshot %s: %w", p.key, err)
	}
	return p.fromSnapshot(snap), true, nil
}

// Save writes the snapshot of state
func (p *SnapshotPersister[S, P]) Save(ctx context.Context, state S) error {
	if p.empty != nil && p.empty(state) {
		if err := p.repo.Delete(ctx, p.key); err != nil {
			return fmt.Errorf("failed to delete snapshot %s: %w", p.key, err)
		}
		return nil
	}
	payload, err := json.Marshal(p.toSnapshot(state))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", p.key, err)
	}
	if err := p.repo.Save(ctx, p.key, payload); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", p.key, err)
	}
	return nil
}

// CartKey is the snapshot key of a session's cart
func CartKey(sessionID string) string {
	return "cart:" + sessionID
}

// UserKey is the snapshot key of a session's auth state
func UserKey(sessionID string) string {
	return "user:" + sessionID
}
