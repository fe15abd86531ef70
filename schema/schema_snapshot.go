package schema

import (
	"fmt"
	"strings"
	"time"
)

// Metric identifies a tracked counter, e.g. the pull count of one Docker Hub repository.
type Metric struct {
	ID         string     `json:"id"`
	Kind       MetricKind `json:"kind"`
	Repository string     `json:"repository"`
}

// NewMetric builds a metric whose ID is "<kind>:<repository>".
func NewMetric(kind MetricKind, repository string) Metric {
	return Metric{
		ID:         string(kind) + ":" + repository,
		Kind:       kind,
		Repository: repository,
	}
}

// ParseMetricID is the inverse of NewMetric.
func ParseMetricID(id string) (Metric, error) {
	kind, repo, ok := strings.Cut(id, ":")
	if !ok || repo == "" {
		return Metric{}, fmt.Errorf("invalid metric id '%s'. must be <kind>:<repository>", id)
	}
	if _, valid := ValidMetricKinds[MetricKind(kind)]; !valid {
		return Metric{}, fmt.Errorf("invalid metric kind '%s'. must be pulls or stars", kind)
	}
	return NewMetric(MetricKind(kind), repo), nil
}

// Label returns the short display name used in notifications and tables.
func (m Metric) Label() string {
	if m.Kind == PullsKind {
		if i := strings.LastIndex(m.Repository, "/"); i >= 0 {
			return m.Repository[i+1:]
		}
	}
	return m.Repository
}

// Snapshot is one persisted fact per (metric, calendar day).
type Snapshot struct {
	Metric          string    `json:"metric"`
	Date            time.Time `json:"date"`
	CumulativeTotal int64     `json:"cumulative_total"`
	DailyDelta      int64     `json:"daily_delta"`
}

// RenderedSeries is the fixed calendar window produced for one metric.
// Accumulated and Unique are keyed by day in DayLayout and hold exactly WindowDays entries.
type RenderedSeries struct {
	Metric      string           `json:"metric"`
	AsOf        time.Time        `json:"as_of"`
	WindowDays  int              `json:"window_days"`
	Accumulated map[string]int64 `json:"accumulated"`
	Unique      map[string]int64 `json:"unique"`
	Total       int64            `json:"total"`
	Live        bool             `json:"live"`
}

// Days returns the window's calendar days in ascending order.
func (r RenderedSeries) Days() []time.Time {
	return WindowDays(r.AsOf, r.WindowDays)
}

// UniqueSum returns the sum of daily deltas across the window.
func (r RenderedSeries) UniqueSum() int64 {
	var sum int64
	for _, v := range r.Unique {
		sum += v
	}
	return sum
}

// Notification is the payload handed to a notification sink after a snapshot is written.
type Notification struct {
	Metric          Metric    `json:"metric"`
	Date            time.Time `json:"date"`
	DailyDelta      int64     `json:"daily_delta"`
	CumulativeTotal int64     `json:"cumulative_total"`
}
