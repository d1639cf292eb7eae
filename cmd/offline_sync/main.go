package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/reprush/internal/clock"
	"github.com/2beens/reprush/internal/db"
	"github.com/2beens/reprush/internal/gymstats/workouts"
	"github.com/2beens/reprush/internal/logging"
	"github.com/2beens/reprush/internal/offline"
	"github.com/2beens/reprush/internal/remote"
	"github.com/2beens/reprush/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// offline_sync queues workouts logged without connectivity and uploads them
// to the service. With -redis-host the queue survives restarts, otherwise it
// only lives for the duration of the run.
func main() {
	serverURL := flag.String("server", "http://localhost:9000", "reprush service base url")
	userID := flag.String("user", "", "user id to upload the workouts for")
	workoutFile := flag.String("file", "", "offline workout JSON to enqueue, - for stdin")
	redisHost := flag.String("redis-host", "", "redis host for a persistent queue, in-memory queue if empty")
	redisPort := flag.String("redis-port", "6379", "redis port")
	interval := flag.Duration("interval", 0, "keep syncing on this interval, sync once if 0")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    *logLevel,
	})

	if *userID == "" {
		log.Fatalln("user id not set, use -user")
	}
	gatewaySecret := os.Getenv("REPRUSH_GATEWAY_SECRET")
	if gatewaySecret == "" {
		log.Fatalln("gateway secret not set. use REPRUSH_GATEWAY_SECRET")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	realClock := clock.Real()
	var queue offline.Queue
	if *redisHost != "" {
		rdb := db.NewRedisClient(ctx, db.NewRedisClientParams{
			Host:     *redisHost,
			Port:     *redisPort,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("close redis client: %s", err)
			}
		}()
		queue = offline.NewRedisQueue(rdb, "reprush:offline:"+*userID+":", realClock)
	} else {
		queue = offline.NewMemoryQueue(realClock)
	}

	if *workoutFile != "" {
		localID, err := enqueueWorkout(ctx, queue, *workoutFile)
		if err != nil {
			log.Fatalf("enqueue workout: %s", err)
		}
		log.Infof("workout queued as [%s]", localID)
	}

	syncer := offline.NewSyncer(
		queue,
		remote.NewClient(*serverURL, gatewaySecret, *userID),
		realClock,
		*interval,
		metrics.NewManager("reprush", "offline_sync", nil),
	)

	if *interval <= 0 {
		synced, err := syncer.SyncOnce(ctx)
		if err != nil {
			log.Errorf("sync: %d synced, errors: %s", synced, err)
			os.Exit(1)
		}
		log.Infof("%d records synced", synced)
		return
	}

	log.Infof("syncing every %s, ctrl+c to stop", *interval)
	syncer.Run(ctx)
}

func enqueueWorkout(ctx context.Context, queue offline.Queue, path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read [%s]: %w", path, err)
	}

	var workout workouts.OfflineWorkout
	if err := json.Unmarshal(raw, &workout); err != nil {
		return "", fmt.Errorf("parse workout: %w", err)
	}
	if !workout.Summary.Mode.IsValid() {
		return "", fmt.Errorf("invalid mode [%s]", workout.Summary.Mode)
	}
	if len(workout.Entries) == 0 {
		return "", errors.New("workout has no entries")
	}
	if workout.Summary.FinishedAt.IsZero() {
		workout.Summary.FinishedAt = time.Now()
	}

	payload, err := json.Marshal(workout)
	if err != nil {
		return "", fmt.Errorf("marshal workout: %w", err)
	}

	return queue.Enqueue(ctx, offline.KindWorkout, payload)
}
