package iostore

import (
	"fmt"
	"io"
	"sort"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

// PrintStoreStatus prints store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d (latest %d, ok=%t)\n", status.SchemaVersion, LatestSchemaVersion, status.SchemaVersionOK)
	_, _ = fmt.Fprintf(w, "Total Snapshots: %d\n", status.TotalSnapshots)
	if status.TotalSnapshots > 0 {
		_, _ = fmt.Fprintf(w, "Oldest Snapshot: %s\n", schema.DayKey(status.OldestSnapshot))
		_, _ = fmt.Fprintf(w, "Newest Snapshot: %s\n", schema.DayKey(status.NewestSnapshot))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(contract.DateTimeFormat))
	}
	if len(status.MetricCounts) == 0 {
		return
	}

	metrics := make([]string, 0, len(status.MetricCounts))
	for metric := range status.MetricCounts {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)
	_, _ = fmt.Fprintln(w, "Snapshots per metric:")
	for _, metric := range metrics {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", metric, status.MetricCounts[metric])
	}
}

// PrintMigrationResult prints the outcome of a migration.
func PrintMigrationResult(w io.Writer, result MigrationResult) {
	if !result.Changed {
		_, _ = fmt.Fprintf(w, "No migration needed. Database is already at version %d\n", result.ToVersion)
		return
	}
	_, _ = fmt.Fprintf(w, "Successfully migrated from version %d to version %d\n", result.FromVersion, result.ToVersion)
}
