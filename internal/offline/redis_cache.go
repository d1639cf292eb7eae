package offline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/reprush/internal/clock"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache stores entries under prefix+key. Redis expiry is only a backstop.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	clock  clock.Clock
}

func NewRedisCache(rdb *redis.Client, prefix string, clk clock.Clock) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		prefix: prefix,
		clock:  clk,
	}
}

func (c *RedisCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.rediscache.put")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	e := newEntry(c.clock.Now(), value, ttl)
	data, err := e.marshal()
	if err != nil {
		return err
	}

	expiration := time.Duration(backstopSeconds(e.TTL)) * time.Second
	if err := c.rdb.Set(ctx, c.prefix+key, string(data), expiration).Err(); err != nil {
		return fmt.Errorf("redis set [%s]: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.rediscache.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	data, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get [%s]: %w", key, err)
	}

	e, err := unmarshalEntry([]byte(data))
	if err != nil {
		return nil, false, err
	}
	if e.expired(c.clock.Now()) {
		if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
			return nil, false, fmt.Errorf("redis del expired [%s]: %w", key, err)
		}
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del [%s]: %w", key, err)
	}
	return nil
}
