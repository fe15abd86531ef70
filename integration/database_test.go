//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/hubstats/internal/iostore"
	"github.com/huangsam/hubstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestHubstatsWithMySQL tests the hubstats CLI with a MySQL backend.
func TestHubstatsWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "hubstats",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/hubstats?parseTime=true", host, port.Port())

	t.Run("cli", func(t *testing.T) {
		exerciseStore(t, "--store-backend", "mysql", "--store-db-connect", connStr)
	})
	t.Run("stores", func(t *testing.T) {
		exerciseStoreAPI(t, schema.MySQLBackend, connStr)
	})
}

// TestHubstatsWithPostgres tests the hubstats CLI with a PostgreSQL backend.
func TestHubstatsWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	t.Run("cli", func(t *testing.T) {
		exerciseStore(t, "--store-backend", "postgresql", "--store-db-connect", connStr)
	})
	t.Run("stores", func(t *testing.T) {
		exerciseStoreAPI(t, schema.PostgreSQLBackend, connStr)
	})
}

// exerciseStoreAPI checks upsert, ordering and run tracking directly against a live backend.
func exerciseStoreAPI(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	ctx := context.Background()
	require.NoError(t, iostore.ClearStore(backend, connStr))

	result, err := iostore.MigrateStore(backend, connStr, -1)
	require.NoError(t, err)
	assert.Equal(t, iostore.LatestSchemaVersion, result.ToVersion)

	snapshots, err := iostore.NewSnapshotStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = snapshots.Close() }()
	runs, err := iostore.NewRunStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = runs.Close() }()

	day := func(d int) time.Time { return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC) }
	metric := "pulls:acme/api"

	require.NoError(t, snapshots.UpsertSnapshots(ctx,
		schema.Snapshot{Metric: metric, Date: day(3), CumulativeTotal: 130, DailyDelta: 30},
		schema.Snapshot{Metric: metric, Date: day(1), CumulativeTotal: 100, DailyDelta: 100},
	))
	// Same day again replaces the row
	require.NoError(t, snapshots.UpsertSnapshots(ctx,
		schema.Snapshot{Metric: metric, Date: day(3), CumulativeTotal: 140, DailyDelta: 40},
	))

	got, err := snapshots.ListSnapshots(ctx, metric)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(day(1)))
	assert.Equal(t, int64(140), got[1].CumulativeTotal)
	assert.Equal(t, int64(40), got[1].DailyDelta)

	last, ok, err := snapshots.LastSnapshot(ctx, metric)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, last.Date.Equal(day(3)))

	metrics, err := snapshots.ListMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{metric}, metrics)

	runID, err := runs.BeginRun(ctx, time.Now(), day(3))
	require.NoError(t, err)
	require.NoError(t, runs.RecordOutcome(ctx, runID, schema.MetricResult{
		Metric:          metric,
		Outcome:         schema.OutcomeOK,
		CumulativeTotal: 140,
		DailyDelta:      40,
	}))
	require.NoError(t, runs.EndRun(ctx, runID, time.Now(), 1))

	listed, err := runs.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, runID, listed[0].ID)
	assert.Equal(t, 1, listed[0].SnapshotsWritten)
	require.NotNil(t, listed[0].EndTime)
	require.Len(t, listed[0].Outcomes, 1)
	assert.Equal(t, schema.OutcomeOK, listed[0].Outcomes[0].Outcome)
}
