package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/iostore"
	"github.com/huangsam/hubstats/internal/logger"
	"github.com/huangsam/hubstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// storeManager is the global persistence manager instance.
var storeManager contract.StoreManager = iostore.Manager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "hubstats",
	Short: "Track Docker Hub pulls and GitHub stars as daily snapshots.",
	Long: `hubstats records the cumulative pull and star counters of your repositories once a day
and renders them as contiguous per-day series, with today's figure fetched live.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("HUBSTATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Unprefixed names used by existing deployments
	bindEnvFallback("telegram-bot-token", "TELEGRAM_BOT_TOKEN")
	bindEnvFallback("telegram-chat-id", "TELEGRAM_BOT_CHAT_ID")
	bindEnvFallback("github-token", "GITHUB_TOKEN")

	// Set defaults in Viper
	viper.SetDefault("docker-repositories", contract.DefaultDockerRepositories)
	viper.SetDefault("github-repository", contract.DefaultGitHubRepository)
	viper.SetDefault("window", schema.DefaultWindowDays)
	viper.SetDefault("ingest-lag", contract.DefaultIngestLag)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("limit", contract.DefaultRunLimit)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", contract.DefaultLogFormat)
}

// bindEnvFallback lets key be read from the prefixed variable or from fallback.
func bindEnvFallback(key, fallback string) {
	prefixed := "HUBSTATS_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if err := viper.BindEnv(key, prefixed, fallback); err != nil {
		contract.LogWarn("Cannot bind env for "+key, err)
	}
}

// setConfigFile points viper at --config or the default .hubstats locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".hubstats") // Name of config file (without extension)
	viper.SetConfigType("yaml")      // We'll use YAML format
	viper.AddConfigPath(".")         // Look in the current directory
	viper.AddConfigPath("$HOME")     // Look in the home directory
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// This function populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input, time.Now()); err != nil {
		return err
	}

	// 4. Operational logs go to stderr so stdout stays clean for reports.
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return err
	}

	// 5. Initialize persistence layer with validated config
	if err := iostore.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigFile()

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager sets the global store manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
