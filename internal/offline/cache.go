package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTTL is used when Put is called with a non-positive ttl.
const DefaultTTL = 300000 * time.Millisecond

// Cache is a key-value store with per-entry TTL. Expired entries are treated
// as absent on read and removed lazily. A miss is not an error.
type Cache interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
}

// entry is the stored envelope. Expiry is decided from WrittenAt and TTL so
// that it follows the injected clock rather than the backing store's timer.
type entry struct {
	WrittenAt time.Time     `json:"writtenAt"`
	TTL       time.Duration `json:"ttl"`
	Value     []byte        `json:"value"`
}

func newEntry(now time.Time, value []byte, ttl time.Duration) entry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return entry{
		WrittenAt: now,
		TTL:       ttl,
		Value:     value,
	}
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.WrittenAt) > e.TTL
}

func (e entry) marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

func unmarshalEntry(data []byte) (entry, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return e, nil
}

// backstopSeconds is the expiry handed to the backing store: a bit longer than
// the logical ttl, so the store never drops an entry that is still valid.
func backstopSeconds(ttl time.Duration) int {
	secs := int(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	return secs + 1
}
