package repository

import (
	"context"
	"sync"
)

type memorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemorySnapshotRepository creates an in-process SnapshotRepository.
// Snapshots do not survive a restart.
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{snapshots: make(map[string][]byte)}
}

func (r *memorySnapshotRepository) Save(ctx context.Context, key string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)

	r.mu.Lock()
	r.snapshots[key] = stored
	r.mu.Unlock()
	return nil
}

func (r *memorySnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	payload, ok := r.snapshots[key]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (r *memorySnapshotRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.snapshots, key)
	r.mu.Unlock()
	return nil
}
