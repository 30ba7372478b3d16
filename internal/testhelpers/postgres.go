// Package testhelpers runs integration tests against a disposable PostgreSQL container.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yakoovad/groupmatch/internal/db"
	"go.uber.org/zap"
)

const postgresImage = "postgres:16-alpine"

var (
	sharedPool     *pgxpool.Pool
	sharedPoolOnce sync.Once
	sharedPoolErr  error
)

// GetTestPool returns a pool on a migrated postgres container shared by the whole test run.
// Every call truncates all tables so each test starts from an empty schema.
func GetTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode (requires Docker)")
	}

	sharedPoolOnce.Do(func() {
		sharedPool, sharedPoolErr = setupTestDB()
	})
	if sharedPoolErr != nil {
		t.Fatalf("failed to set up test database: %v", sharedPoolErr)
	}

	_, err := sharedPool.Exec(context.Background(),
		`TRUNCATE join_requests, group_members, groups, projects, organisation_members,
		 organisations, user_languages, user_skills, profiles CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate test database: %v", err)
	}

	return sharedPool
}

func setupTestDB() (*pgxpool.Pool, error) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "groupmatch",
				"POSTGRES_USER":     "groupmatch",
				"POSTGRES_PASSWORD": "test_password",
			},
			// postgres logs readiness twice: once for the init run and once for the real server.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://groupmatch:test_password@%s:%s/groupmatch?sslmode=disable", host, port.Port())

	if err = db.Migrate(connStr, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping test database: %w", err)
	}

	return pool, nil
}
