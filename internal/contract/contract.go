// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/hubstats/schema"
)

// CounterSource reads the current cumulative value of one counter from upstream.
// Implementations return an error matching ErrUpstreamUnavailable on network, status or decode failure.
type CounterSource interface {
	// Metric returns the metric this source feeds.
	Metric() schema.Metric

	// FetchCurrentTotal returns the counter's cumulative value as of now.
	FetchCurrentTotal(ctx context.Context) (int64, error)
}

// RepositorySource is a CounterSource that can also describe the repository it counts.
// The dashboard uses it to fill repository cards from the same request as the live total.
type RepositorySource interface {
	CounterSource

	// FetchRepository returns the upstream description, with Count set to the counter value.
	FetchRepository(ctx context.Context) (schema.RepositoryInfo, error)
}

// Notifier delivers a message after a snapshot is written. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, n schema.Notification) error
}

// StoreManager defines the interface for managing persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
	GetRunStore() RunStore
}

// SnapshotStore defines the interface for durable daily snapshots keyed by (metric, date).
type SnapshotStore interface {
	// ListSnapshots returns all snapshots of a metric in ascending date order.
	ListSnapshots(ctx context.Context, metric string) ([]schema.Snapshot, error)

	// UpsertSnapshots writes snapshots in one transaction, replacing rows with the same (metric, date).
	UpsertSnapshots(ctx context.Context, snapshots ...schema.Snapshot) error

	// LastSnapshot returns the most recent snapshot of a metric, if any.
	LastSnapshot(ctx context.Context, metric string) (schema.Snapshot, bool, error)

	// ListMetrics returns every metric with at least one snapshot.
	ListMetrics(ctx context.Context) ([]string, error)

	// GetStatus returns status information about the snapshot store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// RunStore defines the interface for tracking ingestion runs.
type RunStore interface {
	// BeginRun creates a new ingestion run and returns its unique ID
	BeginRun(ctx context.Context, startTime time.Time, snapshotDate time.Time) (int64, error)

	// RecordOutcome stores the per-metric result of a run
	RecordOutcome(ctx context.Context, runID int64, result schema.MetricResult) error

	// EndRun updates the run with completion data
	EndRun(ctx context.Context, runID int64, endTime time.Time, written int) error

	// ListRuns returns the most recent runs, newest first, with their outcomes
	ListRuns(ctx context.Context, limit int) ([]schema.IngestRun, error)

	// GetStatus fills the run fields of a store status
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
