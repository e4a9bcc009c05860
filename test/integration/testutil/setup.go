//go:build integration

package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xpump/platform/internal/app"
	"github.com/xpump/platform/internal/auth"
	"github.com/xpump/platform/internal/infra"
)

const (
	TestJWTSecret = "integration-test-secret-with-32-chars"
	TestDBHost    = "localhost"
	TestDBPort    = 5436
	TestDBUser    = "xpump"
	TestDBPass    = "xpump"
	TestDBName    = "xpump_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server   *httptest.Server
	Pool     *pgxpool.Pool
	JWTMgr   *auth.JWTManager
	Services *app.Services
	t        *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "xpump")
}

func ensureTestDB() error {
	if os.Getenv("TEST_DATABASE_URL") != "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}
	if !exists {
		if _, err := bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName)); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}
		if err := infra.RunMigrations(testDSN(), quietLogger()); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the
// real router, services and test DB. Settings are reset to the seeded defaults.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)
	logger := quietLogger()

	env := &TestEnv{Pool: pool, t: t}
	env.CleanAll()

	cfg := &infra.Config{
		AppTimezone:             "UTC",
		SeasonCacheSize:         64,
		DefaultWorkoutFrequency: 3,
	}
	services, err := app.NewServices(pool, cfg, logger)
	if err != nil {
		t.Fatalf("wire services: %v", err)
	}
	if _, err := services.Settings.Reload(context.Background()); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	env.JWTMgr = auth.NewJWTManager(TestJWTSecret, time.Hour, time.Hour)
	env.Services = services
	env.Server = httptest.NewServer(app.NewRouter(app.RouterDeps{
		Pool:        pool,
		Services:    services,
		JWTMgr:      env.JWTMgr,
		Logger:      logger,
		CORSOrigins: "*",
	}))

	t.Cleanup(func() {
		env.Server.Close()
		env.CleanAll()
	})
	return env
}
