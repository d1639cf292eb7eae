package offline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/reprush/internal/clock"

	"github.com/coocood/freecache"
)

var _ Cache = (*MemoryCache)(nil)

// MemoryCache keeps entries in a freecache segment cache.
type MemoryCache struct {
	fc    *freecache.Cache
	clock clock.Clock
}

// NewMemoryCache allocates sizeBytes for the cache (freecache enforces a 512KB minimum).
func NewMemoryCache(sizeBytes int, clk clock.Clock) *MemoryCache {
	return &MemoryCache{
		fc:    freecache.NewCache(sizeBytes),
		clock: clk,
	}
}

func (c *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := newEntry(c.clock.Now(), value, ttl)
	data, err := e.marshal()
	if err != nil {
		return err
	}
	if err := c.fc.Set([]byte(key), data, backstopSeconds(e.TTL)); err != nil {
		return fmt.Errorf("set [%s]: %w", key, err)
	}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := c.fc.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get [%s]: %w", key, err)
	}

	e, err := unmarshalEntry(data)
	if err != nil {
		return nil, false, err
	}
	if e.expired(c.clock.Now()) {
		c.fc.Del([]byte(key))
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.fc.Del([]byte(key))
	return nil
}

// EntryCount includes expired entries not read since expiry.
func (c *MemoryCache) EntryCount() int64 {
	return c.fc.EntryCount()
}
