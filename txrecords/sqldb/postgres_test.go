//go:build itest && test_db_postgres

package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	// Shared container instance, reused across tests. Each test gets its
	// own database inside it.
	pgContainer *postgres.PostgresContainer

	pgContainerOnce sync.Once

	pgContainerErr error

	// Timeout for waiting for the postgres container to start. Needs to
	// consider container image download time.
	pgInitTimeout = 2 * time.Minute

	pgTerminateTimeout = 1 * time.Minute
)

// TestMain terminates the shared postgres container after the test suite.
func TestMain(m *testing.M) {
	code := m.Run()

	if pgContainer != nil {
		ctx, cancel := context.WithTimeout(
			context.Background(), pgTerminateTimeout,
		)
		defer cancel()

		err := pgContainer.Terminate(ctx)
		if err != nil {
			fmt.Printf("failed to terminate postgres container: %v\n",
				err)
		}
	}

	os.Exit(code)
}

func getPostgresContainer(
	ctx context.Context) (*postgres.PostgresContainer, error) {

	pgContainerOnce.Do(func() {
		pgContainer, pgContainerErr = postgres.RunContainer(ctx,
			testcontainers.WithImage("postgres:18-alpine"),
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategyAndDeadline(
				pgInitTimeout, wait.ForListeningPort("5432/tcp"),
			),
		)
	})

	return pgContainer, pgContainerErr
}

// sanitizedPgDBName converts a test name to a valid PostgreSQL database name.
func sanitizedPgDBName(t *testing.T) string {
	dbName := strings.ToLower(t.Name())

	reg := regexp.MustCompile(`[^a-z0-9_]`)
	dbName = reg.ReplaceAllString(dbName, "_")

	// PostgreSQL database names are limited to 63 characters.
	if len(dbName) > 63 {
		dbName = dbName[:63]
	}

	return dbName
}

// newTestPostgresDB creates a migrated database for the running test.
func newTestPostgresDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := getPostgresContainer(ctx)
	require.NoError(t, err, "failed to get postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	adminDB, err := sql.Open("pgx", connStr)
	require.NoError(t, err, "failed to open admin connection")
	t.Cleanup(func() {
		_ = adminDB.Close()
	})

	dbName := sanitizedPgDBName(t)
	_, err = adminDB.ExecContext(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err, "failed to create test database")

	testConnStr := strings.Replace(connStr, "/postgres?", "/"+dbName+"?", 1)

	dbConn, err := OpenPostgres(testConnStr)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		_ = dbConn.Close()
	})

	return dbConn
}

// TestPostgresStore runs the shared store tests against PostgreSQL.
func TestPostgresStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) *Store {
		store, err := NewPostgresStore(
			newTestPostgresDB(t), clock.NewTestClock(testTime),
		)
		require.NoError(t, err)

		return store
	})
}
