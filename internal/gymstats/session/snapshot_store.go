package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// RedisSnapshotStore keeps one snapshot per user under <prefix>snapshot:<user>
// and the users with a snapshot in the <prefix>snapshots set.
type RedisSnapshotStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSnapshotStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisSnapshotStore) snapshotKey(userID string) string {
	return s.prefix + "snapshot:" + userID
}

func (s *RedisSnapshotStore) usersKey() string {
	return s.prefix + "snapshots"
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.snapshotstore.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session-id", snap.ID))

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.rdb.Set(ctx, s.snapshotKey(snap.UserID), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	if err := s.rdb.SAdd(ctx, s.usersKey(), snap.UserID).Err(); err != nil {
		return fmt.Errorf("sadd snapshot user: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.snapshotstore.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.rdb.Del(ctx, s.snapshotKey(userID)).Err(); err != nil {
		return fmt.Errorf("del snapshot: %w", err)
	}
	if err := s.rdb.SRem(ctx, s.usersKey(), userID).Err(); err != nil {
		return fmt.Errorf("srem snapshot user: %w", err)
	}
	return nil
}

// List returns every stored snapshot. Users whose snapshot expired are
// removed from the set on the way.
func (s *RedisSnapshotStore) List(ctx context.Context) (_ []Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.snapshotstore.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userIDs, err := s.rdb.SMembers(ctx, s.usersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers snapshot users: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(userIDs))
	for _, userID := range userIDs {
		data, err := s.rdb.Get(ctx, s.snapshotKey(userID)).Result()
		if errors.Is(err, redis.Nil) {
			if err := s.rdb.SRem(ctx, s.usersKey(), userID).Err(); err != nil {
				log.Warnf("remove expired snapshot user [%s]: %s", userID, err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get snapshot [%s]: %w", userID, err)
		}

		var snap Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			log.Errorf("skipping corrupt snapshot for [%s]: %s", userID, err)
			continue
		}
		snapshots = append(snapshots, snap)
	}

	span.SetAttributes(attribute.Int("count", len(snapshots)))
	return snapshots, nil
}
