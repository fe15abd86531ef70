package schema

import "time"

// StoreStatus represents the status of the snapshot store.
type StoreStatus struct {
	Backend         string         `json:"backend"`
	Connected       bool           `json:"connected"`
	TotalSnapshots  int            `json:"total_snapshots"`
	MetricCounts    map[string]int `json:"metric_counts"`
	OldestSnapshot  time.Time      `json:"oldest_snapshot"`
	NewestSnapshot  time.Time      `json:"newest_snapshot"`
	TableSizeBytes  int64          `json:"table_size_bytes"`
	TotalRuns       int            `json:"total_runs"`
	LastRunID       int64          `json:"last_run_id"`
	LastRunTime     time.Time      `json:"last_run_time"`
	SchemaVersion   uint           `json:"schema_version"`
	SchemaVersionOK bool           `json:"schema_version_ok"`
}

// IngestRun represents one row of the ingest_runs table.
type IngestRun struct {
	ID               int64          `json:"id"`
	StartTime        time.Time      `json:"start_time"`
	EndTime          *time.Time     `json:"end_time,omitempty"`
	SnapshotDate     time.Time      `json:"snapshot_date"`
	SnapshotsWritten int            `json:"snapshots_written"`
	Outcomes         []MetricResult `json:"outcomes,omitempty"`
}

// MetricResult is the per-metric outcome of an ingestion run.
type MetricResult struct {
	Metric          string  `json:"metric"`
	Outcome         Outcome `json:"outcome"`
	CumulativeTotal int64   `json:"cumulative_total"`
	DailyDelta      int64   `json:"daily_delta"`
	Error           string  `json:"error,omitempty"`
}

// IngestReport is what the ingestion job returns to its caller.
type IngestReport struct {
	RunID        int64          `json:"run_id"`
	SnapshotDate time.Time      `json:"snapshot_date"`
	Results      []MetricResult `json:"results"`
	Notified     int            `json:"notified"`
}

// Written returns the number of metrics that produced a snapshot.
func (r IngestReport) Written() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeOK {
			n++
		}
	}
	return n
}
