package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/hubstats/core"
	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/iostore"
	"github.com/huangsam/hubstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeConfigSetup loads the minimal configuration needed for store operations.
// It does NOT open the stores, so migrate and clear work on a fresh or broken database.
func storeConfigSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	output := schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, html", output)
	}
	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.Output = output
	cfg.OutputFile = viper.GetString("output-file")
	cfg.UseColors = colors
	cfg.Width = viper.GetInt("width")
	cfg.RunLimit = viper.GetInt("limit")

	return nil
}

// storeSetup loads the store configuration and opens the stores.
func storeSetup() error {
	if err := storeConfigSetup(); err != nil {
		return err
	}
	if err := iostore.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeConfigSetupWrapper wraps storeConfigSetup to provide PreRunE for clear and migrate.
func storeConfigSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeConfigSetup()
}

// storeCmd focused on snapshot store management.
//
// Note: store subcommands use minimal initialization instead of the full sharedSetup.
// This avoids validating upstream and notification settings for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the snapshot store",
	Long: `Manage the database holding daily snapshots and ingestion runs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show snapshot and run statistics
  runs    - List recent ingestion runs
  export  - Export data to Parquet for analytics
  clear   - Remove all stored data
  migrate - Run database schema migrations`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show the backend, connection state, snapshots per metric, stored date range,
ingestion runs and schema version.

Examples:
  hubstats store status
  hubstats store status --store-backend postgresql --store-db-connect "host=localhost dbname=hubstats"`,
	PreRunE: storeSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := iostore.GetStoreStatus(storeManager)
		if err != nil {
			return fmt.Errorf("failed to get store status: %w", err)
		}
		iostore.PrintStoreStatus(os.Stdout, status)
		return nil
	},
}

// storeRunsCmd lists recent ingestion runs.
var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent ingestion runs and their outcomes",
	Long: `List the most recent ingestion runs, newest first.

Examples:
  hubstats store runs --limit 5
  hubstats store runs --output csv --output-file runs.csv`,
	PreRunE: storeSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteRuns(rootCtx, cfg, storeManager)
	},
}

// storeExportCmd exports store data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshots and runs to Parquet",
	Long: `Export all stored snapshots and ingestion runs to Parquet files.

Writes <output-file>.snapshots.parquet and <output-file>.runs.parquet.

Requires: --output-file parameter

Examples:
  hubstats store export --output-file hubstats
  duckdb -c "SELECT * FROM read_parquet('hubstats.snapshots.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iostore.ExportStore(rootCtx, storeManager, cfg.OutputFile, os.Stdout)
	},
}

// storeClearCmd clears all stored data.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all snapshots and runs",
	Long: `Delete all stored snapshots, ingestion runs and the migration state.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  hubstats store export --output-file backup
  hubstats store clear`,
	PreRunE: storeConfigSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iostore.ClearStore(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		fmt.Println("Store cleared successfully.")
		return nil
	},
}

// storeMigrateCmd runs database migrations for the store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hubstats store migrate

  # Migrate to specific version
  hubstats store migrate --target-version 2

  # Rollback all migrations
  hubstats store migrate --target-version 0`,
	PreRunE: storeConfigSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		result, err := iostore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, viper.GetInt("target-version"))
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		iostore.PrintMigrationResult(os.Stdout, result)
		return nil
	},
}
