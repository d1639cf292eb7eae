package exercises

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/reprush/internal/offline"
	"github.com/2beens/reprush/internal/telemetry/metrics"
	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=catalog_mocks_test.go -package=exercises_test

type catalogRepo interface {
	ListExercises(ctx context.Context, filter Filter) ([]Exercise, error)
	GetExercise(ctx context.Context, id int) (Exercise, error)
}

// CachedCatalog reads the exercise catalog through the local cache. Cache
// failures are logged and fall through to the repo.
type CachedCatalog struct {
	repo           catalogRepo
	cache          offline.Cache
	ttl            time.Duration
	metricsManager *metrics.Manager
}

func NewCachedCatalog(
	repo catalogRepo,
	cache offline.Cache,
	ttl time.Duration,
	metricsManager *metrics.Manager,
) *CachedCatalog {
	if ttl <= 0 {
		ttl = offline.DefaultTTL
	}
	return &CachedCatalog{
		repo:           repo,
		cache:          cache,
		ttl:            ttl,
		metricsManager: metricsManager,
	}
}

func listCacheKey(filter Filter) string {
	return fmt.Sprintf("exercises:list:%s:%s", filter.Category, strings.ToLower(strings.TrimSpace(filter.Search)))
}

func exerciseCacheKey(id int) string {
	return fmt.Sprintf("exercises:id:%d", id)
}

func (c *CachedCatalog) List(ctx context.Context, filter Filter) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalog.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := listCacheKey(filter)
	var cached []Exercise
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	list, err := c.repo.ListExercises(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, list)

	return list, nil
}

func (c *CachedCatalog) Get(ctx context.Context, id int) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalog.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := exerciseCacheKey(id)
	var cached Exercise
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	ex, err := c.repo.GetExercise(ctx, id)
	if err != nil {
		return Exercise{}, err
	}
	c.store(ctx, key, ex)

	return ex, nil
}

func (c *CachedCatalog) lookup(ctx context.Context, key string, dst any) bool {
	data, found, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warnf("catalog cache get [%s]: %s", key, err)
		c.observe("error")
		return false
	}
	if !found {
		c.observe("miss")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warnf("catalog cache unmarshal [%s]: %s", key, err)
		c.observe("error")
		return false
	}
	c.observe("hit")
	return true
}

func (c *CachedCatalog) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warnf("catalog cache marshal [%s]: %s", key, err)
		return
	}
	if err := c.cache.Put(ctx, key, data, c.ttl); err != nil {
		log.Warnf("catalog cache put [%s]: %s", key, err)
	}
}

func (c *CachedCatalog) observe(result string) {
	if c.metricsManager == nil {
		return
	}
	c.metricsManager.CounterCache.With(prometheus.Labels{"cache": "catalog", "result": result}).Inc()
}
