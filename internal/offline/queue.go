package offline

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/2beens/reprush/internal/clock"

	"github.com/google/uuid"
)

var (
	ErrRecordNotFound = errors.New("queued record not found")
	// ErrRejected marks an upload the remote store refused for good; retrying
	// the same record cannot succeed.
	ErrRejected = errors.New("record rejected by remote")
)

// Record kinds.
const (
	KindWorkout = "workout"
)

// Record is a locally written record waiting to be uploaded. Records are
// never removed from the queue; synced and rejected records are only flagged.
type Record struct {
	LocalID      string          `json:"localId"`
	Kind         string          `json:"kind"`
	Payload      json.RawMessage `json:"payload"`
	Synced       bool            `json:"synced"`
	Rejected     bool            `json:"rejected,omitempty"`
	RejectReason string          `json:"rejectReason,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Queue holds unsynced records. Delivery is at-least-once: a record stays
// unsynced until MarkSynced, so an upload may be repeated after a crash.
// A rejected record is no longer listed as unsynced.
type Queue interface {
	Enqueue(ctx context.Context, kind string, payload []byte) (localID string, err error)
	ListUnsynced(ctx context.Context) ([]Record, error)
	MarkSynced(ctx context.Context, localID string) error
	MarkRejected(ctx context.Context, localID, reason string) error
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

var _ Queue = (*MemoryQueue)(nil)

type MemoryQueue struct {
	mu      sync.Mutex
	clock   clock.Clock
	newID   func() string
	records map[string]*Record
	order   []string
}

func NewMemoryQueue(clk clock.Clock) *MemoryQueue {
	return &MemoryQueue{
		clock:   clk,
		newID:   uuid.NewString,
		records: make(map[string]*Record),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, kind string, payload []byte) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	r := &Record{
		LocalID:   q.newID(),
		Kind:      kind,
		Payload:   append(json.RawMessage(nil), payload...),
		CreatedAt: q.clock.Now(),
	}
	q.records[r.LocalID] = r
	q.order = append(q.order, r.LocalID)

	return r.LocalID, nil
}

func (q *MemoryQueue) ListUnsynced(_ context.Context) ([]Record, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	unsynced := make([]Record, 0)
	for _, id := range q.order {
		if r := q.records[id]; !r.Synced && !r.Rejected {
			unsynced = append(unsynced, *r)
		}
	}
	sortRecords(unsynced)
	return unsynced, nil
}

func (q *MemoryQueue) MarkSynced(_ context.Context, localID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	r, ok := q.records[localID]
	if !ok {
		return ErrRecordNotFound
	}
	r.Synced = true
	return nil
}

func (q *MemoryQueue) MarkRejected(_ context.Context, localID, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	r, ok := q.records[localID]
	if !ok {
		return ErrRecordNotFound
	}
	r.Rejected = true
	r.RejectReason = reason
	return nil
}

// Get returns a copy of the record, synced or not.
func (q *MemoryQueue) Get(localID string) (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	r, ok := q.records[localID]
	if !ok {
		return Record{}, false
	}
	return *r, true
}
