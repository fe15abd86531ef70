// Package iostore persists daily counter snapshots and ingestion runs.
package iostore

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// Table names for snapshot storage and run tracking.
const (
	snapshotsTable = "hubstats_snapshots"
	runsTable      = "hubstats_ingest_runs"
	outcomesTable  = "hubstats_ingest_outcomes"
)

// sqliteBusyTimeoutMs lets the snapshot and run stores share one SQLite file.
const sqliteBusyTimeoutMs = 5000

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// StoreManager manages the snapshot and run store instances.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	snapshots    contract.SnapshotStore
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetSnapshotStore returns the SnapshotStore.
func (mgr *StoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}

// GetRunStore returns the RunStore.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

// driverFor returns the database/sql driver name registered for a backend.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite3", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// sqliteDSN resolves the SQLite path and adds a busy timeout to file databases.
func sqliteDSN(connStr string) string {
	dsn := connStr
	if dsn == "" {
		dsn = contract.GetStoreDBFilePath()
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "?") {
		return dsn
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d", dsn, sqliteBusyTimeoutMs)
}

// openDB opens and pings a connection for the backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch backend {
	case schema.SQLiteBackend:
		dsn := sqliteDSN(connStr)
		db, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dsn, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... user=... dbname=...", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// validateTableName guards table names that are interpolated into queries.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// placeholders returns n positional parameters for the backend, e.g. "$1, $2" or "?, ?".
func placeholders(backend schema.DatabaseBackend, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(backend, i+1)
	}
	return strings.Join(parts, ", ")
}

// placeholder returns the i-th (1-based) positional parameter for the backend.
func placeholder(backend schema.DatabaseBackend, i int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}
