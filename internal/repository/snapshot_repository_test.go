package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseRepository runs the behaviour every SnapshotRepository shares
func exerciseRepository(t *testing.T, repo SnapshotRepository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Load(ctx, "cart:missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	require.NoError(t, repo.Save(ctx, "cart:abc", []byte(`{"items":[]}`)))
	payload, err := repo.Load(ctx, "cart:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(payload))

	require.NoError(t, repo.Save(ctx, "cart:abc", []byte(`{"items":[{"id":"i1"}]}`)))
	payload, err = repo.Load(ctx, "cart:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"id":"i1"}]}`, string(payload))

	require.NoError(t, repo.Delete(ctx, "cart:abc"))
	_, err = repo.Load(ctx, "cart:abc")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	// Deleting a missing key is not an error
	assert.NoError(t, repo.Delete(ctx, "cart:abc"))
}

func TestMemorySnapshotRepository(t *testing.T) {
	exerciseRepository(t, NewMemorySnapshotRepository())
}

// Feature: optic-storefront, Property 11: Saved snapshots are returned unchanged
func TestProperty_MemoryRepositoryReturnsSavedPayload(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("load returns what save stored", prop.ForAll(
		func(key, payload string) bool {
			repo := NewMemorySnapshotRepository()
			ctx := context.Background()
			if err := repo.Save(ctx, key, []byte(payload)); err != nil {
				return false
			}
			got, err := repo.Load(ctx, key)
			return err == nil && string(got) == payload
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMemorySnapshotRepository_CopiesPayload(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	payload := []byte(`{"a":1}`)
	require.NoError(t, repo.Save(ctx, "k", payload))
	payload[2] = 'b'

	got, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisSnapshotRepository(t *testing.T) {
	_, client := newMiniredisClient(t)
	exerciseRepository(t, NewRedisSnapshotRepository(client, "storefront", 0))
}

func TestRedisSnapshotRepository_PrefixAndTTL(t *testing.T) {
	mr, client := newMiniredisClient(t)
	repo := NewRedisSnapshotRepository(client, "storefront", time.Hour)

	require.NoError(t, repo.Save(context.Background(), "user:abc", []byte(`{}`)))

	assert.True(t, mr.Exists("storefront:user:abc"))
	assert.Equal(t, time.Hour, mr.TTL("storefront:user:abc"))

	mr.FastForward(2 * time.Hour)
	_, err := repo.Load(context.Background(), "user:abc")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestOpenSnapshotRepository(t *testing.T) {
	_, client := newMiniredisClient(t)

	repo, err := OpenSnapshotRepository(DriverMemory, nil, nil, "p", 0)
	require.NoError(t, err)
	assert.NotNil(t, repo)

	repo, err = OpenSnapshotRepository(DriverRedis, nil, client, "p", 0)
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = OpenSnapshotRepository(DriverRedis, nil, nil, "p", 0)
	assert.Error(t, err)

	_, err = OpenSnapshotRepository(DriverPostgres, nil, nil, "p", 0)
	assert.Error(t, err)

	_, err = OpenSnapshotRepository("etcd", nil, nil, "p", 0)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
