package iostore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/parquet"
	"github.com/huangsam/hubstats/schema"
)

// exportRunLimit bounds how many runs are exported alongside the snapshots.
const exportRunLimit = 100000

// ExportStore writes every persisted snapshot and run outcome to Parquet files
// named <outputFile>.snapshots.parquet and <outputFile>.runs.parquet.
func ExportStore(ctx context.Context, mgr contract.StoreManager, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetSnapshotStore()
	if store == nil {
		return errors.New("snapshot store is not initialized")
	}

	metrics, err := store.ListMetrics(ctx)
	if err != nil {
		return fmt.Errorf("failed to list metrics: %w", err)
	}
	if len(metrics) == 0 {
		return errors.New("no snapshot data found to export")
	}

	var snapshots []schema.Snapshot
	for _, metric := range metrics {
		history, err := store.ListSnapshots(ctx, metric)
		if err != nil {
			return fmt.Errorf("failed to retrieve snapshots for %s: %w", metric, err)
		}
		snapshots = append(snapshots, history...)
	}

	snapshotsFile := outputFile + ".snapshots.parquet"
	if err := parquet.WriteSnapshotsParquet(parquet.ConvertSnapshots(snapshots), snapshotsFile); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d snapshots across %d metrics to: %s\n", len(snapshots), len(metrics), snapshotsFile)

	runs := mgr.GetRunStore()
	if runs == nil {
		return nil
	}
	records, err := runs.ListRuns(ctx, exportRunLimit)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteOutcomesParquet(parquet.ConvertRuns(records), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(records), runsFile)
	return nil
}
