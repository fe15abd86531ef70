package contract

import (
	"fmt"
	"net/url"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/hubstats/schema"
)

// Default values for configuration.
const (
	DefaultHTTPTimeout      = 10 * time.Second
	DefaultIngestLag        = 1
	MaxIngestLag            = 7
	MaxWindowDays           = 366
	DefaultRunLimit         = 20
	DefaultDockerHubURL     = "https://hub.docker.com/v2/repositories"
	DefaultGitHubURL        = "https://api.github.com/repos"
	DefaultTelegramURL      = "https://api.telegram.org"
	DefaultGitHubRepository = "opnform/opnform"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultUserAgent        = "hubstats"
)

// DefaultDockerRepositories are the Docker Hub repositories tracked when none are configured.
var DefaultDockerRepositories = []string{"jhumanj/opnform-api", "jhumanj/opnform-client"}

// DefaultWorkers is the default number of concurrent upstream fetches.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ValidLogLevels lists the accepted --log-level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted --log-format values.
var ValidLogFormats = []string{"console", "json"}

// Config holds the runtime configuration for ingestion and rendering.
// This struct remains the "final, validated" config.
type Config struct {
	DockerRepositories []string
	GitHubRepository   string // Empty disables star tracking
	DockerHubURL       string
	GitHubURL          string
	GitHubToken        string // Please use env var as this is plaintext

	WindowDays  int
	AsOf        time.Time // UTC day treated as "today"
	IngestLag   int       // Days between AsOf and the ingested snapshot date
	HTTPTimeout time.Duration
	Workers     int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	RunLimit   int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	TelegramBotToken string // Please use env var as this is plaintext
	TelegramChatID   string
	TelegramURL      string

	MetricsFile string
	LogLevel    string
	LogFormat   string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Upstream sources ---
	DockerRepositories []string `mapstructure:"docker-repositories"`
	GitHubRepository   string   `mapstructure:"github-repository"`
	DockerHubURL       string   `mapstructure:"docker-hub-url"`
	GitHubURL          string   `mapstructure:"github-url"`
	GitHubToken        string   `mapstructure:"github-token"`
	HTTPTimeout        string   `mapstructure:"http-timeout"`
	Workers            int      `mapstructure:"workers"`

	// --- Window and dates ---
	Window    int    `mapstructure:"window"`
	AsOf      string `mapstructure:"as-of"`
	IngestLag int    `mapstructure:"ingest-lag"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Limit      int    `mapstructure:"limit"`

	// --- Storage ---
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Notification ---
	TelegramBotToken string `mapstructure:"telegram-bot-token"`
	TelegramChatID   string `mapstructure:"telegram-chat-id"`
	TelegramURL      string `mapstructure:"telegram-url"`

	// --- Observability ---
	MetricsFile string `mapstructure:"metrics-file"`
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.DockerRepositories != nil {
		clone.DockerRepositories = slices.Clone(c.DockerRepositories)
	}
	return &clone
}

// Metrics returns every metric the configuration tracks, pulls first.
func (c *Config) Metrics() []schema.Metric {
	metrics := make([]schema.Metric, 0, len(c.DockerRepositories)+1)
	for _, repo := range c.DockerRepositories {
		metrics = append(metrics, schema.NewMetric(schema.PullsKind, repo))
	}
	if c.GitHubRepository != "" {
		metrics = append(metrics, schema.NewMetric(schema.StarsKind, c.GitHubRepository))
	}
	return metrics
}

// SnapshotDate returns the calendar day an ingestion run records its snapshots under.
func (c *Config) SnapshotDate() time.Time {
	return schema.Day(c.AsOf).AddDate(0, 0, -c.IngestLag)
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. now anchors the default as-of day.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSources(cfg, input); err != nil {
		return err
	}
	if err := processWindow(cfg, input, now); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processNotification(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateRepository checks a "<namespace>/<name>" repository reference.
func ValidateRepository(repo string) error {
	namespace, name, ok := strings.Cut(repo, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid repository '%s'. must be <namespace>/<name>", repo)
	}
	return nil
}

// validateSimpleInputs processes and validates output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsFile = strings.TrimSpace(input.MetricsFile)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, html", input.Output)
	}

	// --- 3. Limit Validation ---
	cfg.RunLimit = input.Limit
	if cfg.RunLimit == 0 {
		cfg.RunLimit = DefaultRunLimit
	}
	if cfg.RunLimit < 0 {
		return fmt.Errorf("limit must be greater than 0 (received %d)", input.Limit)
	}

	// --- 4. Logging Validation ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if !slices.Contains(ValidLogLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if !slices.Contains(ValidLogFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}

	return nil
}

// processSources validates repositories, endpoints and the HTTP timeout.
func processSources(cfg *Config, input *ConfigRawInput) error {
	cfg.DockerRepositories = nil
	for _, raw := range input.DockerRepositories {
		for part := range strings.SplitSeq(raw, ",") {
			repo := strings.TrimSpace(part)
			if repo == "" {
				continue
			}
			if err := ValidateRepository(repo); err != nil {
				return fmt.Errorf("invalid docker repository: %w", err)
			}
			if !slices.Contains(cfg.DockerRepositories, repo) {
				cfg.DockerRepositories = append(cfg.DockerRepositories, repo)
			}
		}
	}

	cfg.GitHubRepository = strings.TrimSpace(input.GitHubRepository)
	if cfg.GitHubRepository != "" {
		if err := ValidateRepository(cfg.GitHubRepository); err != nil {
			return fmt.Errorf("invalid github repository: %w", err)
		}
	}

	if len(cfg.DockerRepositories) == 0 && cfg.GitHubRepository == "" {
		return fmt.Errorf("at least one docker repository or a github repository must be configured")
	}

	var err error
	if cfg.DockerHubURL, err = validateBaseURL("docker-hub-url", input.DockerHubURL, DefaultDockerHubURL); err != nil {
		return err
	}
	if cfg.GitHubURL, err = validateBaseURL("github-url", input.GitHubURL, DefaultGitHubURL); err != nil {
		return err
	}
	cfg.GitHubToken = input.GitHubToken

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if input.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(input.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid http-timeout '%s': %w", input.HTTPTimeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("http-timeout must be positive (received %s)", input.HTTPTimeout)
		}
		cfg.HTTPTimeout = timeout
	}

	return nil
}

// processWindow resolves the as-of day, window length and ingest lag.
func processWindow(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.WindowDays = input.Window
	if cfg.WindowDays == 0 {
		cfg.WindowDays = schema.DefaultWindowDays
	}
	if cfg.WindowDays < 1 || cfg.WindowDays > MaxWindowDays {
		return fmt.Errorf("window must be between 1 and %d days (received %d)", MaxWindowDays, input.Window)
	}

	cfg.AsOf = schema.Day(now)
	if input.AsOf != "" {
		asOf, err := schema.ParseDay(input.AsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of value: %w", err)
		}
		cfg.AsOf = asOf
	}

	if input.IngestLag < 0 || input.IngestLag > MaxIngestLag {
		return fmt.Errorf("ingest-lag must be between 0 and %d days (received %d)", MaxIngestLag, input.IngestLag)
	}
	cfg.IngestLag = input.IngestLag

	return nil
}

// validateBackendConfigs validates the snapshot store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// processNotification copies the Telegram settings; a half-configured pair is rejected.
func processNotification(cfg *Config, input *ConfigRawInput) error {
	cfg.TelegramBotToken = strings.TrimSpace(input.TelegramBotToken)
	cfg.TelegramChatID = strings.TrimSpace(input.TelegramChatID)
	if (cfg.TelegramBotToken == "") != (cfg.TelegramChatID == "") {
		return fmt.Errorf("telegram-bot-token and telegram-chat-id must be set together")
	}

	var err error
	cfg.TelegramURL, err = validateBaseURL("telegram-url", input.TelegramURL, DefaultTelegramURL)
	return err
}

// validateBaseURL returns fallback for an empty value and rejects non-http(s) URLs.
func validateBaseURL(name, value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid %s '%s'. must be an http or https URL", name, value)
	}
	return strings.TrimRight(value, "/"), nil
}

// RevalidateWindow applies a per-request window and as-of day on top of a validated config.
// Zero or empty values keep the existing settings.
func RevalidateWindow(cfg *Config, window int, asOf string) error {
	if window != 0 {
		if window < 1 || window > MaxWindowDays {
			return fmt.Errorf("window must be between 1 and %d days (received %d)", MaxWindowDays, window)
		}
		cfg.WindowDays = window
	}
	if asOf != "" {
		day, err := schema.ParseDay(asOf)
		if err != nil {
			return fmt.Errorf("invalid as_of value: %w", err)
		}
		cfg.AsOf = day
	}
	return nil
}
