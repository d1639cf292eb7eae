package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/reprush/internal/auth"
	"github.com/2beens/reprush/internal/clock"
	"github.com/2beens/reprush/internal/config"
	"github.com/2beens/reprush/internal/db"
	"github.com/2beens/reprush/internal/gymstats/achievements"
	"github.com/2beens/reprush/internal/gymstats/events"
	"github.com/2beens/reprush/internal/gymstats/exercises"
	"github.com/2beens/reprush/internal/gymstats/session"
	"github.com/2beens/reprush/internal/gymstats/stats"
	"github.com/2beens/reprush/internal/gymstats/workouts"
	"github.com/2beens/reprush/internal/middleware"
	"github.com/2beens/reprush/internal/misc"
	"github.com/2beens/reprush/internal/offline"
	"github.com/2beens/reprush/internal/telemetry/metrics"
	"github.com/2beens/reprush/internal/telemetry/tracing"
)

const (
	snapshotKeyPrefix = "reprush:session:"
	megabyte          = 1024 * 1024
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	gatewayChecker  *auth.GatewayChecker
	catalog         *exercises.CachedCatalog
	workoutsService *workouts.Service
	eventsService   *events.Service
	sessionManager  *session.Manager
	exercisesStats  *stats.Exercises

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	GatewaySecret           string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("reprush", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := db.NewRedisClient(ctx, db.NewRedisClientParams{
		Host:           params.Config.RedisHost,
		Port:           params.Config.RedisPort,
		Password:       params.RedisPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "reprush-backend")
	if err != nil {
		return nil, err
	}

	realClock := clock.Real()
	catalog := exercises.NewCachedCatalog(
		exercises.NewRepo(dbPool),
		offline.NewMemoryCache(params.Config.CatalogCacheSizeMB*megabyte, realClock),
		time.Duration(params.Config.CatalogCacheTTLMs)*time.Millisecond,
		metricsManager,
	)
	workoutsService := workouts.NewService(
		workouts.NewRepo(dbPool),
		achievements.NewRepo(dbPool),
		metricsManager,
	)
	eventsService := events.NewService(events.NewRepo(dbPool))

	sessionManager := session.NewManager(
		realClock,
		session.NewRedisSnapshotStore(
			rdb,
			snapshotKeyPrefix,
			time.Duration(params.Config.SessionSnapshotTTLHours)*time.Hour,
		),
		workoutsService,
		eventsService,
		catalog,
		metricsManager,
	)
	restored, err := sessionManager.Restore(ctx)
	if err != nil {
		// sessions that could not be restored are lost, the service itself can run
		log.Errorf("restore sessions: %s", err)
	} else {
		log.Debugf("restored %d active sessions", restored)
	}

	return &Server{
		config:          params.Config,
		dbPool:          dbPool,
		redisClient:     rdb,
		versionInfo:     params.VersionInfo,
		gatewayChecker:  auth.NewGatewayChecker(params.GatewaySecret),
		catalog:         catalog,
		workoutsService: workoutsService,
		eventsService:   eventsService,
		sessionManager:  sessionManager,
		exercisesStats:  stats.NewExercisesStats(stats.NewRepo(dbPool)),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

// redisPinger adapts the redis client to the health check.
type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("reprush-router"))

	healthServices := map[string]misc.Pinger{}
	if s.dbPool != nil {
		healthServices["postgres"] = s.dbPool
	}
	if s.redisClient != nil {
		healthServices["redis"] = redisPinger{rdb: s.redisClient}
	}
	misc.NewHandler(s.versionInfo, healthServices).SetupRoutes(r)

	exercises.NewHandler(s.catalog).SetupRoutes(r)
	workouts.NewHandler(s.workoutsService, s.catalog).SetupRoutes(r)
	events.NewHandler(s.eventsService).SetupRoutes(r)
	stats.NewHandler(s.exercisesStats).SetupRoutes(r)

	var reqRateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		reqRateLimiter = redis_rate.NewLimiter(s.redisClient)
	}
	session.NewHandler(s.sessionManager).SetupRoutes(
		r,
		reqRateLimiter,
		s.metricsManager,
		s.config.FinishRateLimitAllowedPerMin,
	)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.gatewayChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins...))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests first, so no session changes after the timers stop
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	// snapshots stay in redis, sessions are restored on next start
	if s.sessionManager != nil {
		s.sessionManager.Close()
		log.Debugln("session timers stopped")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
