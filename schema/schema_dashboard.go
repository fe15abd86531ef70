package schema

import "time"

// RepositoryInfo is the upstream description of a tracked repository.
type RepositoryInfo struct {
	Name           string    `json:"name"`
	User           string    `json:"user"`
	Count          int64     `json:"count"`
	Stars          int64     `json:"stars"`
	DateRegistered time.Time `json:"date_registered"`
	LastUpdated    time.Time `json:"last_updated"`
}

// DashboardStats are the headline numbers shown above the charts.
type DashboardStats struct {
	TotalPulls       int64 `json:"total_pulls"`
	PullsToday       int64 `json:"pulls_today"`
	AveragePullsDay  int64 `json:"average_pulls_per_day"`
	TotalStars       int64 `json:"total_stars"`
	StarsToday       int64 `json:"stars_today"`
	TrackedMetrics   int   `json:"tracked_metrics"`
	DegradedMetrics  int   `json:"degraded_metrics"`
	WindowDays       int   `json:"window_days"`
	SnapshotsInStore int   `json:"snapshots_in_store"`
}

// RepositoryCard pairs a metric with its upstream description.
type RepositoryCard struct {
	Metric Metric          `json:"metric"`
	Info   *RepositoryInfo `json:"info,omitempty"`
	Total  int64           `json:"total"`
}

// Dashboard is the full read-path result.
type Dashboard struct {
	AsOf     time.Time         `json:"as_of"`
	Stats    DashboardStats    `json:"stats"`
	Cards    []RepositoryCard  `json:"cards"`
	Series   []RenderedSeries  `json:"series"`
	Degraded map[string]string `json:"degraded,omitempty"`
}
