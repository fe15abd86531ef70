package iostore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the ingestion tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{outcomesTable, getCreateOutcomesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for hubstats_ingest_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time BIGINT NOT NULL,
				end_time BIGINT,
				snapshot_date CHAR(10) NOT NULL,
				snapshots_written INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time BIGINT NOT NULL,
				end_time BIGINT,
				snapshot_date CHAR(10) NOT NULL,
				snapshots_written INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time INTEGER NOT NULL,
				end_time INTEGER,
				snapshot_date TEXT NOT NULL,
				snapshots_written INTEGER NOT NULL DEFAULT 0
			);
		`, quotedTableName)
	}
}

// getCreateOutcomesQuery returns the CREATE TABLE query for hubstats_ingest_outcomes.
func getCreateOutcomesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(outcomesTable, backend)

	switch backend {
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				metric VARCHAR(255) NOT NULL,
				outcome VARCHAR(32) NOT NULL,
				cumulative_total BIGINT NOT NULL DEFAULT 0,
				daily_delta BIGINT NOT NULL DEFAULT 0,
				error_text TEXT,
				PRIMARY KEY (run_id, metric)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				metric TEXT NOT NULL,
				outcome TEXT NOT NULL,
				cumulative_total INTEGER NOT NULL DEFAULT 0,
				daily_delta INTEGER NOT NULL DEFAULT 0,
				error_text TEXT,
				PRIMARY KEY (run_id, metric)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new ingestion run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(ctx context.Context, startTime time.Time, snapshotDate time.Time) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	args := []any{startTime.Unix(), schema.DayKey(snapshotDate)}

	if rs.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf("INSERT INTO %s (start_time, snapshot_date) VALUES ($1, $2) RETURNING run_id", quotedTableName)
		var runID int64
		if err := rs.db.QueryRowContext(ctx, query, args...).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to begin run: %w", err)
		}
		return runID, nil
	}

	query := fmt.Sprintf("INSERT INTO %s (start_time, snapshot_date) VALUES (?, ?)", quotedTableName)
	result, err := rs.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return runID, nil
}

// RecordOutcome stores the per-metric result of a run.
func (rs *RunStoreImpl) RecordOutcome(ctx context.Context, runID int64, result schema.MetricResult) error {
	if rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (run_id, metric, outcome, cumulative_total, daily_delta, error_text) VALUES (%s)",
		quoteTableName(outcomesTable, rs.backend), placeholders(rs.backend, 6),
	)
	var errText sql.NullString
	if result.Error != "" {
		errText = sql.NullString{String: result.Error, Valid: true}
	}
	_, err := rs.db.ExecContext(ctx, query, runID, result.Metric, string(result.Outcome), result.CumulativeTotal, result.DailyDelta, errText)
	if err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", result.Metric, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(ctx context.Context, runID int64, endTime time.Time, written int) error {
	if rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(
		"UPDATE %s SET end_time = %s, snapshots_written = %s WHERE run_id = %s",
		quoteTableName(runsTable, rs.backend),
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
	)
	result, err := rs.db.ExecContext(ctx, query, endTime.Unix(), written, runID)
	if err != nil {
		return fmt.Errorf("failed to end run %d: %w", runID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, with their outcomes.
func (rs *RunStoreImpl) ListRuns(ctx context.Context, limit int) ([]schema.IngestRun, error) {
	if rs.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = contract.DefaultRunLimit
	}

	query := fmt.Sprintf(
		"SELECT run_id, start_time, end_time, snapshot_date, snapshots_written FROM %s ORDER BY run_id DESC LIMIT %d",
		quoteTableName(runsTable, rs.backend), limit,
	)
	rows, err := rs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []schema.IngestRun
	for rows.Next() {
		var (
			run       schema.IngestRun
			startUnix int64
			endUnix   sql.NullInt64
			dateStr   string
		)
		if err := rows.Scan(&run.ID, &startUnix, &endUnix, &dateStr, &run.SnapshotsWritten); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartTime = time.Unix(startUnix, 0).UTC()
		if endUnix.Valid {
			end := time.Unix(endUnix.Int64, 0).UTC()
			run.EndTime = &end
		}
		run.SnapshotDate, _ = schema.ParseDay(dateStr)
		runs = append(runs, run)
	}
	err = rows.Err()
	_ = rows.Close() // SQLite holds a single connection; release it before the outcome queries
	if err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	for i := range runs {
		outcomes, err := rs.listOutcomes(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Outcomes = outcomes
	}
	return runs, nil
}

func (rs *RunStoreImpl) listOutcomes(ctx context.Context, runID int64) ([]schema.MetricResult, error) {
	query := fmt.Sprintf(
		"SELECT metric, outcome, cumulative_total, daily_delta, error_text FROM %s WHERE run_id = %s ORDER BY metric ASC",
		quoteTableName(outcomesTable, rs.backend), placeholder(rs.backend, 1),
	)
	rows, err := rs.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes for run %d: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MetricResult
	for rows.Next() {
		var (
			res     schema.MetricResult
			outcome string
			errText sql.NullString
		)
		if err := rows.Scan(&res.Metric, &outcome, &res.CumulativeTotal, &res.DailyDelta, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		res.Outcome = schema.Outcome(outcome)
		res.Error = errText.String
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetStatus fills the run fields of a store status.
func (rs *RunStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(rs.backend)}
	if rs.db == nil {
		return status, nil
	}
	if err := rs.db.Ping(); err != nil {
		return status, nil
	}
	status.Connected = true

	quotedTableName := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to count runs: %w", err)
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	var startUnix int64
	query := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName)
	if err := rs.db.QueryRow(query).Scan(&status.LastRunID, &startUnix); err != nil {
		return status, fmt.Errorf("failed to query last run: %w", err)
	}
	status.LastRunTime = time.Unix(startUnix, 0).UTC()
	return status, nil
}

// Close closes the database connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
