package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero: never expires
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache implements cache.Cache inside the process.
// Entries are stored encoded so callers never share mutable state with the cache.
type MemoryCache struct {
	entries *xsync.MapOf[string, memoryEntry]
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates the cache. When sweepInterval > 0 a background
// goroutine evicts expired entries; Close stops it.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: xsync.NewMapOf[string, memoryEntry](),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}

	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return c.GetAndTouch(ctx, key, dest, 0)
}

func (c *MemoryCache) GetAndTouch(_ context.Context, key string, dest interface{}, ttl time.Duration) (bool, error) {
	now := c.now()

	var (
		data []byte
		hit  bool
	)
	c.entries.Compute(key, func(old memoryEntry, loaded bool) (memoryEntry, bool) {
		if !loaded || old.expired(now) {
			// delete=true also covers "nothing stored": no entry is created
			return old, true
		}
		hit = true
		data = old.data
		if ttl > 0 {
			old.expiresAt = now.Add(ttl)
		}
		return old, false
	})

	if !hit {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache value for %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries.Store(key, entry)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.entries.Delete(k)
	}
	return nil
}

// DeletePattern supports the glob syntax of path.Match, which covers the
// "prefix:*" patterns used for page keys.
func (c *MemoryCache) DeletePattern(_ context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	c.entries.Range(func(key string, _ memoryEntry) bool {
		if ok, _ := path.Match(pattern, key); ok {
			c.entries.Delete(key)
		}
		return true
	})
	return nil
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (c *MemoryCache) Len() int {
	return c.entries.Size()
}

func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) sweep() {
	now := c.now()
	c.entries.Range(func(key string, entry memoryEntry) bool {
		if entry.expired(now) {
			// Re-check under the bucket lock, the entry may have been touched since
			c.entries.Compute(key, func(old memoryEntry, loaded bool) (memoryEntry, bool) {
				return old, !loaded || old.expired(now)
			})
		}
		return true
	})
}
