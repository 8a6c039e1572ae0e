package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

func newTestStore(t *testing.T, ttl time.Duration, quota int) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewKVStore(mr.Addr(), "test", ttl, quota)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Ping(context.Background()))
	return store, mr
}

func TestNewKVStore_EmptyAddr(t *testing.T) {
	_, err := NewKVStore("", "", 0, 0)
	assert.Error(t, err)
}

func TestNewKVStore_URL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewKVStore("redis://"+mr.Addr()+"/0", "", 0, 0)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	assert.True(t, mr.Exists("marinebook:k"))
}

func TestKVStore_SetGetDelete(t *testing.T) {
	store, mr := newTestStore(t, 0, 0)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "notebooks")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "notebooks", "{}"))
	got, err := mr.Get("test:notebooks")
	require.NoError(t, err)
	assert.Equal(t, "{}", got)

	val, ok, err := store.Get(ctx, "notebooks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", val)

	require.NoError(t, store.Delete(ctx, "notebooks"))
	assert.False(t, mr.Exists("test:notebooks"))
	assert.Equal(t, "redis", store.Name())
}

func TestKVStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session", "x"))
	assert.Equal(t, time.Hour, mr.TTL("test:session"))

	mr.FastForward(2 * time.Hour)
	_, ok, err := store.Get(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStore_Quota(t *testing.T) {
	store, mr := newTestStore(t, 0, 30)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", strings.Repeat("x", 20)))

	err := store.Set(ctx, "b", strings.Repeat("y", 20))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.False(t, mr.Exists("test:b"))

	// Replacing a key does not count its old value.
	require.NoError(t, store.Set(ctx, "a", strings.Repeat("z", 29)))
}

func TestKVStore_Quota_IgnoresOtherNamespaces(t *testing.T) {
	store, mr := newTestStore(t, 0, 30)
	require.NoError(t, mr.Set("other:big", strings.Repeat("q", 100)))

	assert.NoError(t, store.Set(context.Background(), "a", "small"))
}

func TestKVStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t, 0, 0)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, store.Set(ctx, "k", "v"))
	_, _, err := store.Get(ctx, "k")
	assert.Error(t, err)
}
