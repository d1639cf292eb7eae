package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/reprush/internal/clock"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var _ Queue = (*RedisQueue)(nil)

// RedisQueue keeps every record in the <prefix>records hash and the ids of the
// unsynced ones in the <prefix>unsynced set.
type RedisQueue struct {
	rdb    *redis.Client
	prefix string
	clock  clock.Clock
	newID  func() string
}

func NewRedisQueue(rdb *redis.Client, prefix string, clk clock.Clock) *RedisQueue {
	return &RedisQueue{
		rdb:    rdb,
		prefix: prefix,
		clock:  clk,
		newID:  uuid.NewString,
	}
}

func (q *RedisQueue) recordsKey() string  { return q.prefix + "records" }
func (q *RedisQueue) unsyncedKey() string { return q.prefix + "unsynced" }

func (q *RedisQueue) Enqueue(ctx context.Context, kind string, payload []byte) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.redisqueue.enqueue")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r := Record{
		LocalID:   q.newID(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: q.clock.Now(),
	}
	span.SetAttributes(attribute.String("local-id", r.LocalID))

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	// record first: a crash between the two writes leaves an orphan record,
	// never an unsynced id without a record
	if err := q.rdb.HSet(ctx, q.recordsKey(), r.LocalID, string(data)).Err(); err != nil {
		return "", fmt.Errorf("hset record: %w", err)
	}
	if err := q.rdb.SAdd(ctx, q.unsyncedKey(), r.LocalID).Err(); err != nil {
		return "", fmt.Errorf("sadd unsynced: %w", err)
	}

	return r.LocalID, nil
}

func (q *RedisQueue) ListUnsynced(ctx context.Context) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.redisqueue.listunsynced")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ids, err := q.rdb.SMembers(ctx, q.unsyncedKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers unsynced: %w", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	values, err := q.rdb.HMGet(ctx, q.recordsKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget records: %w", err)
	}

	records := make([]Record, 0, len(values))
	var orphans []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			orphans = append(orphans, ids[i])
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			log.Warnf("redis queue: skipping unreadable record [%s]: %s", ids[i], err)
			continue
		}
		if r.Synced || r.Rejected {
			continue
		}
		records = append(records, r)
	}
	sortRecords(records)

	if len(orphans) > 0 {
		log.Warnf("redis queue: %d unsynced ids without a record, dropping: %v", len(orphans), orphans)
		if err := q.rdb.SRem(ctx, q.unsyncedKey(), orphans...).Err(); err != nil {
			log.Errorf("redis queue: srem orphan ids: %s", err)
		}
	}

	return records, nil
}

func (q *RedisQueue) MarkSynced(ctx context.Context, localID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.redisqueue.marksynced")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("local-id", localID))

	return q.update(ctx, localID, func(r *Record) {
		r.Synced = true
	})
}

func (q *RedisQueue) MarkRejected(ctx context.Context, localID, reason string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "offline.redisqueue.markrejected")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("local-id", localID))

	return q.update(ctx, localID, func(r *Record) {
		r.Rejected = true
		r.RejectReason = reason
	})
}

// update rewrites the stored record and takes its id out of the unsynced set.
func (q *RedisQueue) update(ctx context.Context, localID string, apply func(r *Record)) error {
	raw, err := q.rdb.HGet(ctx, q.recordsKey(), localID).Result()
	if errors.Is(err, redis.Nil) {
		return ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("hget record: %w", err)
	}

	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	apply(&r)

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := q.rdb.HSet(ctx, q.recordsKey(), localID, string(data)).Err(); err != nil {
		return fmt.Errorf("hset record: %w", err)
	}
	if err := q.rdb.SRem(ctx, q.unsyncedKey(), localID).Err(); err != nil {
		return fmt.Errorf("srem unsynced: %w", err)
	}

	return nil
}
