package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/resolvefit/backend/internal/config"
	"github.com/resolvefit/backend/internal/db"
	"github.com/resolvefit/backend/internal/lifeevents"
	"github.com/resolvefit/backend/internal/middleware"
	"github.com/resolvefit/backend/internal/planner"
	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/aggregate"
	"github.com/resolvefit/backend/internal/resolution/clock"
	"github.com/resolvefit/backend/internal/resolution/dashboard"
	"github.com/resolvefit/backend/internal/resolution/goals"
	"github.com/resolvefit/backend/internal/resolution/ledger"
	"github.com/resolvefit/backend/internal/resolution/modify"
	"github.com/resolvefit/backend/internal/telemetry/metrics"
	"github.com/resolvefit/backend/internal/telemetry/tracing"

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
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool
	store  resolution.Store
	plan   planner.Planner

	redisClient *redis.Client

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
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
	metricsManager := metrics.NewManager("backend", "main", promRegistry)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "main-backend", rdb)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,
		dbPool:      dbPool,
		store:       resolution.NewRepo(dbPool),
		plan:        setupPlanner(params.Config),
		redisClient: rdb,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

// setupPlanner prefers the remote planner and falls back to the static
// templates when it is not configured or misbehaves.
func setupPlanner(cfg *config.Config) planner.Planner {
	if cfg.PlannerBaseURL == "" {
		log.Debugln("planner base url not set, using static templates")
		return planner.NewStatic()
	}
	timeout := time.Duration(cfg.PlannerTimeoutSeconds) * time.Second
	return planner.NewFallback(planner.NewHTTP(cfg.PlannerBaseURL, timeout))
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	cacheTTL := time.Duration(s.config.DashboardCacheTTLSeconds) * time.Second
	dashboardCache := dashboard.NewCache(s.redisClient, cacheTTL)

	// every persisted mutation invalidates the owning goal's dashboard view
	events := resolution.NewMultiSink(
		resolution.LogSink{},
		dashboard.NewInvalidator(dashboardCache),
	)
	locker := resolution.NewGoalLocker()
	confidence := aggregate.LifeEventAware{
		Base: aggregate.NewTrailingAdherence(s.config.ConfidenceTrailingWeeks),
	}

	lifeEventsService := lifeevents.NewService(
		lifeevents.NewRepo(s.dbPool),
		s.store,
		s.metricsManager,
	)

	goalsHandler := goals.NewHandler(
		goals.NewService(s.store, locker, s.plan, events, s.metricsManager),
	)
	r.HandleFunc("/goal", goalsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-goal")
	r.HandleFunc("/goal/all", goalsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goal/{id}/complete", goalsHandler.HandleConfirmComplete).Methods("POST", "OPTIONS").Name("complete-goal")
	r.HandleFunc("/goal/{id}/abandon", goalsHandler.HandleAbandon).Methods("POST", "OPTIONS").Name("abandon-goal")

	ledgerHandler := ledger.NewHandler(
		ledger.NewService(s.store, locker, events, s.metricsManager),
	)
	r.HandleFunc("/workout/{id}/complete", ledgerHandler.HandleComplete).Methods("POST", "OPTIONS").Name("complete-workout")
	r.HandleFunc("/workout/{id}/skip", ledgerHandler.HandleSkip).Methods("POST", "OPTIONS").Name("skip-workout")
	r.HandleFunc("/workout/{id}/undo", ledgerHandler.HandleUndo).Methods("POST", "OPTIONS").Name("undo-workout")
	r.HandleFunc("/workout/{id}/context", ledgerHandler.HandleContext).Methods("POST", "OPTIONS").Name("workout-context")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	modifyHandler := modify.NewHandler(
		modify.NewService(s.store, locker, events, s.metricsManager),
	)
	modifyRouter := r.PathPrefix("/modify").Subrouter()
	modifyRouter.Use(middleware.RateLimit(
		reqRateLimiter,
		"modify-router",
		s.config.MutationsRateLimitAllowedPerMin,
		s.metricsManager,
	))
	modifyRouter.HandleFunc("/{level}/{id}", modifyHandler.HandleApply).Methods("POST", "OPTIONS").Name("apply-modification")
	modifyRouter.HandleFunc("/{level}/{id}/history", modifyHandler.HandleHistory).Methods("GET", "OPTIONS").Name("modification-history")

	clockHandler := clock.NewHandler(
		clock.NewService(s.store, locker, s.plan, confidence, lifeEventsService, events, s.metricsManager),
	)
	r.HandleFunc("/clock/advance", clockHandler.HandleAdvance).Methods("POST", "OPTIONS").Name("advance-clock")

	lifeEventsHandler := lifeevents.NewHandler(lifeEventsService)
	r.HandleFunc("/goal/{goalId}/life-event", lifeEventsHandler.HandleReport).Methods("POST", "OPTIONS").Name("report-life-event")
	r.HandleFunc("/goal/{goalId}/life-events", lifeEventsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-life-events")
	r.HandleFunc("/goal/{goalId}/life-events/active", lifeEventsHandler.HandleListActive).Methods("GET", "OPTIONS").Name("list-active-life-events")

	dashboardHandler := dashboard.NewHandler(
		dashboard.NewService(s.store, dashboardCache),
	)
	r.HandleFunc("/dashboard/goal/{goalId}", dashboardHandler.HandleOverview).Methods("GET", "OPTIONS").Name("dashboard-overview")
	r.HandleFunc("/dashboard/goal/{goalId}/quarter/{quarter}", dashboardHandler.HandleQuarter).Methods("GET", "OPTIONS").Name("dashboard-quarter")
	r.HandleFunc("/dashboard/goal/{goalId}/week/{week}", dashboardHandler.HandleWeek).Methods("GET", "OPTIONS").Name("dashboard-week")
	r.HandleFunc("/dashboard/workout/{id}", dashboardHandler.HandleWorkout).Methods("GET", "OPTIONS").Name("dashboard-workout")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
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
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

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

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
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
