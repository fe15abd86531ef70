// Package parquet provides data structures and functions for exporting persisted
// snapshots and ingestion runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/hubstats/schema"
	"github.com/parquet-go/parquet-go"
)

// SnapshotRecord represents one row of the hubstats_snapshots table.
type SnapshotRecord struct {
	// Metric is the metric identifier, e.g. pulls:library/nginx
	Metric string `parquet:"metric,snappy"`

	// Date is the UTC calendar day of the snapshot
	Date time.Time `parquet:"snapshot_date,snappy"`

	// CumulativeTotal is the upstream counter value on that day
	CumulativeTotal int64 `parquet:"cumulative_total,snappy"`

	// DailyDelta is the change against the prior snapshot
	DailyDelta int64 `parquet:"daily_delta,snappy"`
}

// OutcomeRecord represents the per-metric result of one ingestion run.
type OutcomeRecord struct {
	RunID            int64      `parquet:"run_id,snappy"`
	StartTime        time.Time  `parquet:"start_time,snappy"`
	EndTime          *time.Time `parquet:"end_time,optional,snappy"`
	SnapshotDate     time.Time  `parquet:"snapshot_date,snappy"`
	SnapshotsWritten int32      `parquet:"snapshots_written,snappy"`
	Metric           string     `parquet:"metric,snappy"`
	Outcome          string     `parquet:"outcome,snappy"`
	CumulativeTotal  int64      `parquet:"cumulative_total,snappy"`
	DailyDelta       int64      `parquet:"daily_delta,snappy"`
	Error            *string    `parquet:"error,optional,snappy"`
}

// ConvertSnapshots converts schema snapshots to Parquet rows.
func ConvertSnapshots(snapshots []schema.Snapshot) []SnapshotRecord {
	records := make([]SnapshotRecord, len(snapshots))
	for i, s := range snapshots {
		records[i] = SnapshotRecord{
			Metric:          s.Metric,
			Date:            schema.Day(s.Date),
			CumulativeTotal: s.CumulativeTotal,
			DailyDelta:      s.DailyDelta,
		}
	}
	return records
}

// ConvertRuns flattens runs into one row per recorded outcome.
// A run without outcomes still yields a single row with an empty metric.
func ConvertRuns(runs []schema.IngestRun) []OutcomeRecord {
	var records []OutcomeRecord
	for _, run := range runs {
		base := OutcomeRecord{
			RunID:            run.ID,
			StartTime:        run.StartTime,
			EndTime:          run.EndTime,
			SnapshotDate:     run.SnapshotDate,
			SnapshotsWritten: int32(run.SnapshotsWritten),
		}
		if len(run.Outcomes) == 0 {
			records = append(records, base)
			continue
		}
		for _, res := range run.Outcomes {
			rec := base
			rec.Metric = res.Metric
			rec.Outcome = string(res.Outcome)
			rec.CumulativeTotal = res.CumulativeTotal
			rec.DailyDelta = res.DailyDelta
			if res.Error != "" {
				errText := res.Error
				rec.Error = &errText
			}
			records = append(records, rec)
		}
	}
	return records
}

// WriteSnapshots writes snapshot rows to w.
func WriteSnapshots(w io.Writer, data []SnapshotRecord) error {
	return writeRows(w, data)
}

// WriteSnapshotsParquet writes snapshot rows to a Parquet file.
func WriteSnapshotsParquet(data []SnapshotRecord, outputPath string) error {
	return writeFile(outputPath, data)
}

// WriteOutcomesParquet writes run outcome rows to a Parquet file.
func WriteOutcomesParquet(data []OutcomeRecord, outputPath string) error {
	return writeFile(outputPath, data)
}

func writeFile[T any](outputPath string, data []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return writeRows(file, data)
}

// writeRows infers the schema from the struct tags of T.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
