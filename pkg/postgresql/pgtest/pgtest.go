// Package pgtest starts a disposable PostgreSQL container with the schema
// migrated, for repository integration tests.
package pgtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/migration"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
)

// Config describes the container and the migrations applied to it.
type Config struct {
	Image          string
	Database       string
	Username       string
	Password       string
	MigrationDir   string
	StartupTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Image == "" {
		c.Image = "postgres:15-alpine"
	}
	if c.Database == "" {
		c.Database = "tradenet_test"
	}
	if c.Username == "" {
		c.Username = "tradenet_test_user"
	}
	if c.Password == "" {
		c.Password = "tradenet_test_pass"
	}
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = 3 * time.Minute
	}
	return c
}

// DB is a migrated database inside a running container.
type DB struct {
	Client postgresql.PostgreSQLClient
	Tx     postgresql.Transaction
}

// Start runs the container, applies every up migration and registers
// cleanup with t. It skips the test under -short.
func Start(t *testing.T, config Config) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	config = config.withDefaults()
	ctx := context.Background()

	container, err := postgres.Run(ctx, config.Image,
		postgres.WithDatabase(config.Database),
		postgres.WithUsername(config.Username),
		postgres.WithPassword(config.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(config.StartupTimeout),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	client, err := postgresql.NewClient(ctx, postgresql.Config{
		Host:     host,
		Port:     port.Int(),
		Database: config.Database,
		Username: config.Username,
		Password: config.Password,
		SSLMode:  "disable",
		MaxConns: 5,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	db := &DB{Client: client, Tx: postgresql.NewTransaction(client)}

	if config.MigrationDir != "" {
		log, err := logger.NewLogger(logger.WithLoggingLevel(logger.WarnLevel))
		require.NoError(t, err)

		runner := migration.NewRunner(client, db.Tx, log, migration.Config{MigrationDir: config.MigrationDir})
		require.NoError(t, runner.EnsureMigrationTable(ctx))
		require.NoError(t, runner.MigrateUp(ctx, 0))
	}

	return db
}

// Truncate empties tables, cascading to dependents.
func (db *DB) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	_, err := db.Client.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	require.NoError(t, err)
}

// Exec runs sql and fails the test on error.
func (db *DB) Exec(t *testing.T, sql string, args ...any) {
	t.Helper()
	_, err := db.Client.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}
