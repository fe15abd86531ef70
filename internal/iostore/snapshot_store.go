package iostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

// SnapshotStoreImpl implements the SnapshotStore interface.
type SnapshotStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore creates a new SnapshotStore with the specified backend.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &SnapshotStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateSnapshotsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", snapshotsTable, err)
	}

	return &SnapshotStoreImpl{
		db:      db,
		backend: backend,
		connStr: connStr,
	}, nil
}

// getCreateSnapshotsQuery returns the CREATE TABLE query for hubstats_snapshots.
func getCreateSnapshotsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(snapshotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric VARCHAR(255) NOT NULL,
				snapshot_date CHAR(10) NOT NULL,
				cumulative_total BIGINT NOT NULL,
				daily_delta BIGINT NOT NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (metric, snapshot_date)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric VARCHAR(255) NOT NULL,
				snapshot_date CHAR(10) NOT NULL,
				cumulative_total BIGINT NOT NULL,
				daily_delta BIGINT NOT NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (metric, snapshot_date)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				metric TEXT NOT NULL,
				snapshot_date TEXT NOT NULL,
				cumulative_total INTEGER NOT NULL,
				daily_delta INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				PRIMARY KEY (metric, snapshot_date)
			);
		`, quotedTableName)
	}
}

// getUpsertQuery returns the insert-or-replace statement keyed on (metric, snapshot_date).
func (ss *SnapshotStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(snapshotsTable, ss.backend)
	columns := "metric, snapshot_date, cumulative_total, daily_delta, updated_at"
	values := placeholders(ss.backend, 5)

	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE cumulative_total = new.cumulative_total, daily_delta = new.daily_delta, updated_at = new.updated_at`,
			quotedTableName, columns, values)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (metric, snapshot_date) DO UPDATE SET cumulative_total = EXCLUDED.cumulative_total, daily_delta = EXCLUDED.daily_delta, updated_at = EXCLUDED.updated_at`,
			quotedTableName, columns, values)
	default: // SQLite
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT(metric, snapshot_date) DO UPDATE SET cumulative_total = excluded.cumulative_total, daily_delta = excluded.daily_delta, updated_at = excluded.updated_at`,
			quotedTableName, columns, values)
	}
}

// ListSnapshots returns all snapshots of a metric in ascending date order.
func (ss *SnapshotStoreImpl) ListSnapshots(ctx context.Context, metric string) ([]schema.Snapshot, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT metric, snapshot_date, cumulative_total, daily_delta FROM %s WHERE metric = %s ORDER BY snapshot_date ASC",
		quoteTableName(snapshotsTable, ss.backend), placeholder(ss.backend, 1),
	)
	rows, err := ss.db.QueryContext(ctx, query, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", metric, err)
	}
	defer func() { _ = rows.Close() }()

	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]schema.Snapshot, error) {
	var snapshots []schema.Snapshot
	for rows.Next() {
		var (
			snap    schema.Snapshot
			dateStr string
		)
		if err := rows.Scan(&snap.Metric, &dateStr, &snap.CumulativeTotal, &snap.DailyDelta); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		date, err := schema.ParseDay(dateStr)
		if err != nil {
			return nil, err
		}
		snap.Date = date
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// UpsertSnapshots writes snapshots in one transaction, replacing rows with the same (metric, date).
func (ss *SnapshotStoreImpl) UpsertSnapshots(ctx context.Context, snapshots ...schema.Snapshot) error {
	if ss.db == nil || len(snapshots) == 0 {
		return nil
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, ss.getUpsertQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for _, snap := range snapshots {
		if snap.Metric == "" {
			return fmt.Errorf("snapshot without metric on %s", schema.DayKey(snap.Date))
		}
		if _, err := stmt.ExecContext(ctx, snap.Metric, schema.DayKey(snap.Date), snap.CumulativeTotal, snap.DailyDelta, now); err != nil {
			return fmt.Errorf("failed to upsert snapshot %s@%s: %w", snap.Metric, schema.DayKey(snap.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshots: %w", err)
	}
	return nil
}

// LastSnapshot returns the most recent snapshot of a metric, if any.
func (ss *SnapshotStoreImpl) LastSnapshot(ctx context.Context, metric string) (schema.Snapshot, bool, error) {
	if ss.db == nil {
		return schema.Snapshot{}, false, nil
	}

	query := fmt.Sprintf(
		"SELECT metric, snapshot_date, cumulative_total, daily_delta FROM %s WHERE metric = %s ORDER BY snapshot_date DESC LIMIT 1",
		quoteTableName(snapshotsTable, ss.backend), placeholder(ss.backend, 1),
	)
	var (
		snap    schema.Snapshot
		dateStr string
	)
	err := ss.db.QueryRowContext(ctx, query, metric).Scan(&snap.Metric, &dateStr, &snap.CumulativeTotal, &snap.DailyDelta)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Snapshot{}, false, nil
	}
	if err != nil {
		return schema.Snapshot{}, false, fmt.Errorf("failed to query last snapshot for %s: %w", metric, err)
	}
	date, err := schema.ParseDay(dateStr)
	if err != nil {
		return schema.Snapshot{}, false, err
	}
	snap.Date = date
	return snap, true, nil
}

// ListMetrics returns every metric with at least one snapshot.
func (ss *SnapshotStoreImpl) ListMetrics(ctx context.Context) ([]string, error) {
	if ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT DISTINCT metric FROM %s ORDER BY metric ASC", quoteTableName(snapshotsTable, ss.backend))
	rows, err := ss.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metrics []string
	for rows.Next() {
		var metric string
		if err := rows.Scan(&metric); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics = append(metrics, metric)
	}
	return metrics, rows.Err()
}

// Close closes the database connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:      string(ss.backend),
		MetricCounts: map[string]int{},
	}
	if ss.db == nil {
		return status, nil
	}

	if err := ss.db.Ping(); err != nil {
		return status, nil
	}
	status.Connected = true

	quotedTableName := quoteTableName(snapshotsTable, ss.backend)

	rows, err := ss.db.Query(fmt.Sprintf("SELECT metric, COUNT(*) FROM %s GROUP BY metric", quotedTableName))
	if err != nil {
		return status, fmt.Errorf("failed to count snapshots: %w", err)
	}
	for rows.Next() {
		var (
			metric string
			count  int
		)
		if err := rows.Scan(&metric, &count); err != nil {
			_ = rows.Close()
			return status, fmt.Errorf("failed to scan snapshot count: %w", err)
		}
		status.MetricCounts[metric] = count
		status.TotalSnapshots += count
	}
	_ = rows.Close()

	if status.TotalSnapshots > 0 {
		var oldest, newest string
		query := fmt.Sprintf("SELECT MIN(snapshot_date), MAX(snapshot_date) FROM %s", quotedTableName)
		if err := ss.db.QueryRow(query).Scan(&oldest, &newest); err != nil {
			return status, fmt.Errorf("failed to query snapshot range: %w", err)
		}
		status.OldestSnapshot, _ = schema.ParseDay(oldest)
		status.NewestSnapshot, _ = schema.ParseDay(newest)
	}

	status.TableSizeBytes = ss.tableSize()
	status.SchemaVersion, status.SchemaVersionOK = ss.schemaVersion()
	return status, nil
}

// tableSize estimates the storage used by the snapshot table. Zero when unknown.
func (ss *SnapshotStoreImpl) tableSize() int64 {
	var size int64
	switch ss.backend {
	case schema.SQLiteBackend:
		query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := ss.db.QueryRow(query).Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil {
			return 0
		}
		query := `SELECT COALESCE(data_length + index_length, 0) FROM information_schema.tables
			WHERE table_schema = ? AND table_name = ?`
		if err := ss.db.QueryRow(query, cfg.DBName, snapshotsTable).Scan(&size); err != nil {
			return 0
		}
	case schema.PostgreSQLBackend:
		if err := ss.db.QueryRow("SELECT pg_total_relation_size($1)", snapshotsTable).Scan(&size); err != nil {
			return 0
		}
	}
	return size
}

// schemaVersion reads the migration version recorded by golang-migrate, if any.
func (ss *SnapshotStoreImpl) schemaVersion() (uint, bool) {
	var (
		version int64
		dirty   bool
	)
	query := fmt.Sprintf("SELECT version, dirty FROM %s LIMIT 1", quoteTableName(migrationsTable, ss.backend))
	if err := ss.db.QueryRow(query).Scan(&version, &dirty); err != nil || version < 0 {
		return 0, false
	}
	return uint(version), !dirty && uint(version) == LatestSchemaVersion
}
