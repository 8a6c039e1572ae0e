package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "text"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("i64", int64(7)))
	require.NoError(t, store.Set("f", 1.5))

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 7, store.GetInt("i64"))
	assert.Equal(t, 1, store.GetInt("f"))
	assert.Equal(t, 1.5, store.GetFloat("f"))
	assert.Equal(t, 42.0, store.GetFloat("i"))

	assert.Empty(t, store.GetString("i"))
	assert.Zero(t, store.GetInt("s"))
}

func TestConfigStore_Watch(t *testing.T) {
	store := NewConfigStore()
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = store.Watch(ctx, func() { calls.Add(1) })
	}()

	assert.Eventually(t, func() bool {
		_ = store.Set("execution.timeout", "1s")
		return calls.Load() > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Empty(t, store.watchers)
}
