package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
)

// DefaultPrefix namespaces keys written by this store.
const DefaultPrefix = "marinebook"

// Ensure KVStore implements the interface.
var _ driven.KeyValueStore = (*KVStore)(nil)

// KVStore is a driven.KeyValueStore on a Redis server.
type KVStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	quota  int
}

// NewKVStore connects to the server at addr. addr may be a redis:// URL or
// a bare host:port. A ttl of zero keeps entries forever and a quota of zero
// disables the size limit.
func NewKVStore(addr, prefix string, ttl time.Duration, quota int) (*KVStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	opt, err := goredis.ParseURL(addr)
	if err != nil {
		opt = &goredis.Options{Addr: addr}
	}

	return &KVStore{
		rdb:    goredis.NewClient(opt),
		prefix: prefix,
		ttl:    ttl,
		quota:  quota,
	}, nil
}

// Ping verifies the server is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the connection pool.
func (s *KVStore) Close() error {
	return s.rdb.Close()
}

// Name identifies the store in logs.
func (s *KVStore) Name() string {
	return "redis"
}

func (s *KVStore) key(k string) string {
	return s.prefix + ":" + k
}

// Get returns the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key, refusing writes that would push the
// namespace past the quota.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if s.quota > 0 {
		used, err := s.usage(ctx, s.key(key))
		if err != nil {
			return err
		}
		if need := used + len(key) + len(value); need > s.quota {
			return fmt.Errorf("redis: %d of %d bytes: %w", need, s.quota, domain.ErrQuotaExceeded)
		}
	}

	if err := s.rdb.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// usage sums key and value sizes in the namespace, skipping exclude.
func (s *KVStore) usage(ctx context.Context, exclude string) (int, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if k := iter.Val(); k != exclude {
			keys = append(keys, k)
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	pipe := s.rdb.Pipeline()
	lens := make([]*goredis.IntCmd, len(keys))
	for i, k := range keys {
		lens[i] = pipe.StrLen(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis strlen: %w", err)
	}

	total := 0
	for i, k := range keys {
		total += len(strings.TrimPrefix(k, s.prefix+":")) + int(lens[i].Val())
	}
	return total, nil
}
