//go:build integration

// Package integration runs the portal against a real PostgreSQL started with
// testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/portal/backend/internal/infrastructure/migration"
	"github.com/portal/backend/internal/infrastructure/persistence"
	"github.com/portal/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var (
	sharedOnce      sync.Once
	sharedContainer *tcpostgres.PostgresContainer
	sharedCfg       config.DatabaseConfig
	sharedErr       error
)

// TestDB is a migrated postgres database
type TestDB struct {
	*persistence.Database
	Config config.DatabaseConfig
	t      *testing.T
}

// NewTestDB returns a connection to the shared container, migrated with the
// embedded SQL migrations and emptied of rows
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedOnce.Do(startContainer)
	require.NoError(t, sharedErr, "Failed to start PostgreSQL container")

	var opts []persistence.Option
	if os.Getenv("TEST_DB_DEBUG") != "" {
		opts = append(opts, persistence.WithLogger(gormlogger.Default.LogMode(gormlogger.Info)))
	}
	cfg := sharedCfg
	db, err := persistence.NewDatabase(&cfg, opts...)
	require.NoError(t, err, "Failed to connect to database")

	tdb := &TestDB{Database: db, Config: cfg, t: t}
	tdb.migrate()
	tdb.CleanTables()
	t.Cleanup(func() { _ = db.Close() })
	return tdb
}

func startContainer() {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("portal_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		sharedErr = err
		return
	}
	sharedContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		sharedErr = err
		return
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		sharedErr = err
		return
	}

	sharedCfg = config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "portal_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}
}

func (tdb *TestDB) migrate() {
	tdb.t.Helper()

	sqlDB, err := tdb.DB.DB()
	require.NoError(tdb.t, err)

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(tdb.t, err, "Failed to create migrator")
	require.NoError(tdb.t, m.Up(), "Failed to run migrations")
}

// CleanTables empties every portal table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	for _, table := range []string{"memos", "allocations", "contributions", "users"} {
		require.NoError(tdb.t, tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error)
	}
}

// terminateShared stops the shared container
func terminateShared() {
	if sharedContainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedContainer.Terminate(ctx)
}
