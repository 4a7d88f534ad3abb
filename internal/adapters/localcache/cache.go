// Package localcache is the in-process fallback for domain.Cache when no
// Redis address is configured.
package localcache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/vmihailenco/msgpack/v5"

	"business_reviews/internal/adapters/observability"
)

type Cache struct{ c *gocache.Cache }

func New(defaultTTL time.Duration) *Cache {
	return &Cache{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

// Values are stored encoded so callers never share slices with the cache.
func (l *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := l.c.Get(key)
	if !ok {
		observability.ObserveCache("local", "miss")
		return false, nil
	}
	observability.ObserveCache("local", "hit")
	return true, msgpack.Unmarshal(v.([]byte), dst)
}

func (l *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("local", "set")
	l.c.Set(key, b, time.Duration(ttlSec)*time.Second)
	return nil
}

func (l *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("local", "del")
	l.c.Delete(key)
	return nil
}

func (l *Cache) Incr(ctx context.Context, key string) (int64, error) {
	// Add is a no-op when the counter already exists.
	_ = l.c.Add(key, int64(0), gocache.NoExpiration)
	return l.c.IncrementInt64(key, 1)
}

func (l *Cache) Counter(ctx context.Context, key string) (int64, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return 0, nil
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("counter %q holds %T", key, v)
	}
	return n, nil
}
