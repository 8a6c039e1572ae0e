package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
)

// Ensure KVStore implements the interface.
var _ driven.KeyValueStore = (*KVStore)(nil)

// KVStore is a process-local key-value store with optional expiry and a
// byte quota. Entries live for ttl after their last write.
type KVStore struct {
	mu    sync.Mutex
	name  string
	quota int
	cache *cache.Cache
}

// NewKVStore creates an in-memory store. A ttl of zero keeps entries until
// the process exits; a quota of zero disables the size limit.
func NewKVStore(name string, ttl time.Duration, quota int) *KVStore {
	expiry := ttl
	cleanup := ttl
	if ttl <= 0 {
		expiry = cache.NoExpiration
		cleanup = 0
	}
	return &KVStore{
		name:  name,
		quota: quota,
		cache: cache.New(expiry, cleanup),
	}
}

// Name identifies the store in logs.
func (s *KVStore) Name() string {
	return s.name
}

// Get returns the value for key.
func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	str, ok := v.(string)
	return str, ok, nil
}

// Set stores value under key unless the quota would be exceeded.
func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used := s.usedExcluding(key)
		if need := used + len(key) + len(value); need > s.quota {
			return fmt.Errorf("%s: %d of %d bytes: %w", s.name, need, s.quota, domain.ErrQuotaExceeded)
		}
	}
	s.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}

// Delete removes the entry.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	return nil
}

// Used returns the bytes held by live entries.
func (s *KVStore) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedExcluding("")
}

// usedExcluding sums key and value bytes of unexpired entries other than skip.
// Caller must hold s.mu.
func (s *KVStore) usedExcluding(skip string) int {
	total := 0
	for k, item := range s.cache.Items() {
		if k == skip {
			continue
		}
		if str, ok := item.Object.(string); ok {
			total += len(k) + len(str)
		}
	}
	return total
}
