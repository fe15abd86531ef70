// Package cmd defines the command-line interface for hubstats.
package cmd

import (
	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeRunsCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringSlice("docker-repositories", contract.DefaultDockerRepositories, "Docker Hub repositories to track as <namespace>/<name>")
	rootCmd.PersistentFlags().String("github-repository", contract.DefaultGitHubRepository, "GitHub repository to track stars for (empty disables)")
	rootCmd.PersistentFlags().String("docker-hub-url", contract.DefaultDockerHubURL, "Docker Hub repositories API base URL")
	rootCmd.PersistentFlags().String("github-url", contract.DefaultGitHubURL, "GitHub repositories API base URL")
	rootCmd.PersistentFlags().String("http-timeout", contract.DefaultHTTPTimeout.String(), "Timeout for each upstream request")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent upstream fetches")
	rootCmd.PersistentFlags().Int("window", schema.DefaultWindowDays, "Number of calendar days to render")
	rootCmd.PersistentFlags().String("as-of", "", "Last day of the window as YYYY-MM-DD (default today, UTC)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or html")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored deltas in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().Int("ingest-lag", contract.DefaultIngestLag, "Days between --as-of and the recorded snapshot date")
	ingestCmd.Flags().String("telegram-url", contract.DefaultTelegramURL, "Telegram Bot API base URL")
	ingestCmd.Flags().String("telegram-chat-id", "", "Telegram chat to notify after each snapshot")
	ingestCmd.Flags().String("metrics-file", "", "Write Prometheus metrics of the run to this textfile")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of storeRunsCmd to Viper
	storeRunsCmd.Flags().IntP("limit", "l", contract.DefaultRunLimit, "Number of runs to display")
	if err := viper.BindPFlags(storeRunsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store runs flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
