package iostore

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/hubstats/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationsTable is the version table golang-migrate maintains on every backend.
const migrationsTable = "schema_migrations"

// LatestSchemaVersion is the highest migration shipped in migrations/.
const LatestSchemaVersion uint = 3

// MigrationResult describes what a migration call did.
type MigrationResult struct {
	Backend     schema.DatabaseBackend `json:"backend"`
	FromVersion uint                   `json:"from_version"`
	ToVersion   uint                   `json:"to_version"`
	Changed     bool                   `json:"changed"`
}

// migrationsDir maps a backend to its SQL dialect directory.
func migrationsDir(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "migrations/mysql"
	case schema.PostgreSQLBackend:
		return "migrations/postgres"
	default:
		return "migrations/sqlite3"
	}
}

// MigrateStore runs database migrations for the snapshot and run tables.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations.
// - If targetVersion > 0, it migrates to the specified version.
func MigrateStore(backend schema.DatabaseBackend, connStr string, targetVersion int) (MigrationResult, error) {
	result := MigrationResult{Backend: backend}
	if backend == schema.NoneBackend {
		return result, fmt.Errorf("migrations are not supported for NoneBackend")
	}
	if targetVersion > int(LatestSchemaVersion) {
		return result, fmt.Errorf("target version %d exceeds latest version %d", targetVersion, LatestSchemaVersion)
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return result, err
	}
	defer func() { _ = db.Close() }()

	// Create a migrate driver instance
	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		return result, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, migrationsDir(backend))
	if err != nil {
		return result, fmt.Errorf("failed to access migrations directory: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return result, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "hubstats", driver)
	if err != nil {
		return result, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return result, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}
	result.FromVersion = currentVersion

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return result, fmt.Errorf("failed to migrate from version %d: %w", currentVersion, err)
	}
	result.Changed = err == nil

	newVersion, _, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return result, fmt.Errorf("failed to read migrated version: %w", verr)
	}
	result.ToVersion = newVersion
	return result, nil
}
