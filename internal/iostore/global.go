package iostore

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the snapshot and run stores.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		snapshots, err := NewSnapshotStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize snapshot store: %w", err)
			return
		}

		runs, err := NewRunStore(backend, connStr)
		if err != nil {
			_ = snapshots.Close()
			initErr = fmt.Errorf("failed to initialize run store: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.snapshots = snapshots
		Manager.runs = runs
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.snapshots != nil {
			_ = Manager.snapshots.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// GetStoreStatus merges the snapshot and run status of a manager.
func GetStoreStatus(mgr contract.StoreManager) (schema.StoreStatus, error) {
	snapshots := mgr.GetSnapshotStore()
	if snapshots == nil {
		return schema.StoreStatus{}, fmt.Errorf("snapshot store is not initialized")
	}
	status, err := snapshots.GetStatus()
	if err != nil {
		return status, err
	}

	if runs := mgr.GetRunStore(); runs != nil {
		runStatus, err := runs.GetStatus()
		if err != nil {
			return status, err
		}
		status.TotalRuns = runStatus.TotalRuns
		status.LastRunID = runStatus.LastRunID
		status.LastRunTime = runStatus.LastRunTime
	}
	return status, nil
}

// ClearStore removes all persisted snapshots and runs for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, connStr string) error {
	tables := []string{outcomesTable, runsTable, snapshotsTable, migrationsTable}

	switch backend {
	case schema.SQLiteBackend:
		dbFilePath := connStr
		if dbFilePath == "" {
			dbFilePath = contract.GetStoreDBFilePath()
		}
		if strings.Contains(dbFilePath, ":memory:") {
			return nil
		}
		dbFilePath = strings.TrimPrefix(dbFilePath, "file:")
		if i := strings.Index(dbFilePath, "?"); i >= 0 {
			dbFilePath = dbFilePath[:i]
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driverName, _ := driverFor(backend)
		for _, table := range tables {
			if err := clearSQLTable(driverName, connStr, table, backend); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string, backend schema.DatabaseBackend) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
