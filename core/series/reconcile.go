package series

import (
	"fmt"
	"time"

	"github.com/huangsam/hubstats/schema"
)

// HistoryLoader returns the ascending snapshot history of one metric.
type HistoryLoader func(metric string) ([]schema.Snapshot, error)

// LiveTotal is the outcome of fetching a metric's current total at render time.
type LiveTotal struct {
	Total int64
	Err   error
}

// Reconciliation is the result of ReconcileAll.
type Reconciliation struct {
	Series   map[string]schema.RenderedSeries
	Degraded map[string]error // metrics rendered without a live override because the fetch failed
}

// ReconcileAll merges live totals and renders the window for every metric independently.
//
// A metric whose live total carries an error is rendered from history alone and listed in
// Degraded. A metric with no entry in live is rendered from history alone without being
// reported. Load errors and inconsistent histories abort the whole reconciliation.
func ReconcileAll(metrics []string, load HistoryLoader, live map[string]LiveTotal, windowDays int, asOf time.Time) (Reconciliation, error) {
	result := Reconciliation{
		Series:   make(map[string]schema.RenderedSeries, len(metrics)),
		Degraded: make(map[string]error),
	}

	for _, metric := range metrics {
		history, err := load(metric)
		if err != nil {
			return Reconciliation{}, fmt.Errorf("failed to load history for %s: %w", metric, err)
		}

		applied := false
		if lt, ok := live[metric]; ok {
			if lt.Err != nil {
				result.Degraded[metric] = lt.Err
			} else {
				history, err = MergeLive(history, lt.Total, asOf)
				if err != nil {
					return Reconciliation{}, fmt.Errorf("failed to merge live total for %s: %w", metric, err)
				}
				applied = true
			}
		}

		rendered, err := RenderWindow(history, windowDays, asOf)
		if err != nil {
			return Reconciliation{}, fmt.Errorf("failed to render %s: %w", metric, err)
		}
		rendered.Metric = metric
		rendered.Live = applied
		result.Series[metric] = rendered
	}

	return result, nil
}
