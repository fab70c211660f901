package test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/resolvefit/backend/internal"
	"github.com/resolvefit/backend/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
)

const (
	serverPort = 9000
	serverHost = "127.0.0.1"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

// IntegrationTestSuite spins up redis and postgres in docker, starts the
// real server and drives it over HTTP.
type IntegrationTestSuite struct {
	suite.Suite

	DB         *pgxpool.Pool
	dockerPool *dockertest.Pool
	server     *internal.Server
	httpClient *http.Client
	teardown   []func()
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	fmt.Println("setting up test suite...")

	s.teardown = make([]func(), 0)
	s.httpClient = &http.Client{Timeout: 10 * time.Second}

	var err error
	s.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	if err = s.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := s.redisSetup()
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}
	fmt.Println("redis setup successful")

	pgPort, err := s.postgresSetup(ctx)
	if err != nil {
		s.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}
	fmt.Println("postgres setup successful")

	cfg := getTestConfig(redisPort, pgPort)
	s.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             "test-version-info",
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		s.cleanup()
		log.Fatalf("new server: %s", err)
	}

	s.server.Serve(ctx, cfg.Host, cfg.Port)
	fmt.Println("server started")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *IntegrationTestSuite) cleanup() {
	fmt.Println(" --> cleaning up test suite...")
	if s.DB != nil {
		s.DB.Close()
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
	fmt.Println(" --> test suite cleanup done")
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Host:                            serverHost,
		Port:                            serverPort,
		RedisHost:                       "localhost",
		RedisPort:                       redisPort,
		PostgresHost:                    "localhost",
		PostgresPort:                    postgresPort,
		PostgresDBName:                  "resolvefit",
		PrometheusMetricsHost:           "localhost",
		PrometheusMetricsPort:           "2112",
		MutationsRateLimitAllowedPerMin: 100,
		DashboardCacheTTLSeconds:        60,
		ConfidenceTrailingWeeks:         4,
	}
}

func (s *IntegrationTestSuite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := redisResource.Close(); err != nil {
			fmt.Printf("redis teardown: %s\n", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *IntegrationTestSuite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "12",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=resolvefit",
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := pgResource.Close(); err != nil {
			fmt.Printf("postgres teardown: %s\n", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf(
		"postgres://postgres@localhost:%s/resolvefit?sslmode=disable",
		pgPort,
	)
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse db config: %w", err)
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return "", fmt.Errorf("create connection pool: %w", err)
	}
	s.DB = db

	if err := s.dockerPool.Retry(func() error {
		return db.Ping(ctx)
	}); err != nil {
		return "", fmt.Errorf("connect to db: %s", err)
	}

	res, err := db.Exec(ctx, initSQL)
	if err != nil {
		return "", fmt.Errorf("run init script: %s", err)
	}
	log.Printf("postgres setup result: %d\n", res.RowsAffected())

	return pgPort, nil
}

const initSQL = `
CREATE TABLE public.yearly_goal
(
    id                  VARCHAR PRIMARY KEY,
    resolution_text     TEXT    NOT NULL,
    start_date          TIMESTAMPTZ NOT NULL,
    target_date         TIMESTAMPTZ NOT NULL,
    current_week        INTEGER NOT NULL,
    total_weeks         INTEGER NOT NULL,
    progress_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
    confidence_score    DOUBLE PRECISION,
    status              VARCHAR NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE public.quarterly_phase
(
    id                    VARCHAR PRIMARY KEY,
    goal_id               VARCHAR NOT NULL REFERENCES public.yearly_goal (id),
    quarter               INTEGER NOT NULL,
    name                  VARCHAR NOT NULL,
    description           TEXT,
    week_start            INTEGER NOT NULL,
    week_end              INTEGER NOT NULL,
    target_workouts       INTEGER NOT NULL,
    focus_areas           JSONB,
    milestones            JSONB,
    risk_factors          JSONB,
    protective_strategies JSONB,
    status                VARCHAR NOT NULL,
    workouts_completed    INTEGER NOT NULL DEFAULT 0,
    adherence_rate        DOUBLE PRECISION NOT NULL DEFAULT 0,
    completion_percentage DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE public.weekly_plan
(
    id                      VARCHAR PRIMARY KEY,
    phase_id                VARCHAR NOT NULL REFERENCES public.quarterly_phase (id),
    goal_id                 VARCHAR NOT NULL REFERENCES public.yearly_goal (id),
    week_number             INTEGER NOT NULL,
    quarter_week            INTEGER NOT NULL,
    start_date              TIMESTAMPTZ NOT NULL,
    end_date                TIMESTAMPTZ NOT NULL,
    target_workouts         INTEGER NOT NULL,
    target_duration_minutes INTEGER NOT NULL DEFAULT 0,
    focus                   VARCHAR,
    estimated_difficulty    VARCHAR,
    risk_level              VARCHAR,
    status                  VARCHAR NOT NULL,
    workouts_planned        INTEGER NOT NULL DEFAULT 0,
    workouts_completed      INTEGER NOT NULL DEFAULT 0,
    total_minutes_completed INTEGER NOT NULL DEFAULT 0,
    adherence_rate          DOUBLE PRECISION NOT NULL DEFAULT 0,
    completion_percentage   DOUBLE PRECISION NOT NULL DEFAULT 0,
    remaining_workouts      INTEGER NOT NULL DEFAULT 0,
    UNIQUE (goal_id, week_number)
);

CREATE TABLE public.daily_workout
(
    id           VARCHAR PRIMARY KEY,
    week_id      VARCHAR NOT NULL REFERENCES public.weekly_plan (id),
    phase_id     VARCHAR NOT NULL REFERENCES public.quarterly_phase (id),
    goal_id      VARCHAR NOT NULL REFERENCES public.yearly_goal (id),
    date         TIMESTAMPTZ NOT NULL,
    planned      JSONB   NOT NULL,
    context      JSONB,
    was_modified BOOLEAN NOT NULL DEFAULT FALSE,
    completed    JSONB,
    skipped      JSONB
);

CREATE TABLE public.modification
(
    id              VARCHAR PRIMARY KEY,
    level           VARCHAR NOT NULL,
    target_id       VARCHAR NOT NULL,
    goal_id         VARCHAR NOT NULL,
    actor           VARCHAR NOT NULL,
    mod_type        VARCHAR NOT NULL,
    reason          TEXT    NOT NULL,
    adjusted_value  VARCHAR,
    intensity_shift VARCHAR,
    override_flag   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE public.life_event
(
    id          VARCHAR PRIMARY KEY,
    goal_id     VARCHAR NOT NULL REFERENCES public.yearly_goal (id),
    event_type  VARCHAR NOT NULL,
    impact      VARCHAR NOT NULL,
    description TEXT,
    start_date  TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL
);
`
