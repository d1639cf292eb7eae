package offline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/reprush/internal/clock"
	"github.com/2beens/reprush/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=syncer_mocks_test.go -package=offline_test

// Uploader delivers one record to the remote store. It must be safe to call
// again for a record that was already delivered.
type Uploader interface {
	Upload(ctx context.Context, record Record) error
}

type Syncer struct {
	queue          Queue
	uploader       Uploader
	clock          clock.Clock
	interval       time.Duration
	metricsManager *metrics.Manager
}

func NewSyncer(
	queue Queue,
	uploader Uploader,
	clk clock.Clock,
	interval time.Duration,
	metricsManager *metrics.Manager,
) *Syncer {
	return &Syncer{
		queue:          queue,
		uploader:       uploader,
		clock:          clk,
		interval:       interval,
		metricsManager: metricsManager,
	}
}

// SyncOnce uploads every unsynced record in queue order. A failed upload
// leaves the record unsynced for the next round; the other records are
// still attempted. A record the remote rejects (ErrRejected) is flagged in
// the queue and not retried.
func (s *Syncer) SyncOnce(ctx context.Context) (synced int, err error) {
	records, err := s.queue.ListUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unsynced: %w", err)
	}

	for _, r := range records {
		if ctx.Err() != nil {
			return synced, multierr.Append(err, ctx.Err())
		}

		uploadErr := s.uploader.Upload(ctx, r)
		if errors.Is(uploadErr, ErrRejected) {
			log.Errorf("sync [%s] [%s] rejected, will not retry: %s", r.Kind, r.LocalID, uploadErr)
			s.observe("rejected")
			if markErr := s.queue.MarkRejected(ctx, r.LocalID, uploadErr.Error()); markErr != nil {
				err = multierr.Append(err, fmt.Errorf("mark rejected [%s]: %w", r.LocalID, markErr))
				continue
			}
			err = multierr.Append(err, fmt.Errorf("upload [%s]: %w", r.LocalID, uploadErr))
			continue
		}
		if uploadErr != nil {
			log.Warnf("sync [%s] [%s]: %s", r.Kind, r.LocalID, uploadErr)
			s.observe("failed")
			err = multierr.Append(err, fmt.Errorf("upload [%s]: %w", r.LocalID, uploadErr))
			continue
		}

		if markErr := s.queue.MarkSynced(ctx, r.LocalID); markErr != nil {
			s.observe("failed")
			err = multierr.Append(err, fmt.Errorf("mark synced [%s]: %w", r.LocalID, markErr))
			continue
		}

		s.observe("synced")
		synced++
	}

	return synced, err
}

// Run syncs right away and then on every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Debugln("syncer stopped")
			return
		case <-ticker.C:
			s.syncAndLog(ctx)
		}
	}
}

func (s *Syncer) syncAndLog(ctx context.Context) {
	synced, err := s.SyncOnce(ctx)
	if err != nil {
		log.Errorf("sync round: %d synced, errors: %s", synced, err)
		return
	}
	if synced > 0 {
		log.Infof("sync round: %d records synced", synced)
	}
}

func (s *Syncer) observe(result string) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.CounterSyncedRecords.With(prometheus.Labels{"result": result}).Inc()
}
