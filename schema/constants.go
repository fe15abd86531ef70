package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshot storage.
	DatabaseBackend string

	// MetricKind represents the kind of counter a metric tracks.
	MetricKind string

	// Outcome represents the result of fetching one metric during an ingestion run.
	Outcome string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	HTMLOut    OutputMode = "html"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All metric kinds supported.
const (
	PullsKind MetricKind = "pulls" // Docker Hub pull_count
	StarsKind MetricKind = "stars" // GitHub stargazers_count
)

// All ingestion outcomes recorded per metric.
const (
	OutcomeOK                  Outcome = "ok"
	OutcomeUpstreamUnavailable Outcome = "upstream_unavailable"
	OutcomeStoreFailed         Outcome = "store_failed"
)

// DefaultWindowDays is the number of trailing calendar days rendered by default.
const DefaultWindowDays = 30

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	HTMLOut:    {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidMetricKinds lists all valid metric kinds.
var ValidMetricKinds = map[MetricKind]struct{}{
	PullsKind: {},
	StarsKind: {},
}
