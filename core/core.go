// Package core has core logic for ingestion and dashboard rendering.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/logger"
	"github.com/huangsam/hubstats/internal/metrics"
	"github.com/huangsam/hubstats/internal/notify"
	"github.com/huangsam/hubstats/internal/outwriter"
	"github.com/huangsam/hubstats/internal/upstream"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// BuildSources creates one source per configured Docker Hub repository, plus the GitHub
// source when a repository is configured.
func BuildSources(cfg *contract.Config) []contract.CounterSource {
	client := upstream.NewClient(cfg.HTTPTimeout)
	var sources []contract.CounterSource
	for _, repo := range cfg.DockerRepositories {
		sources = append(sources, upstream.NewDockerHubSource(client, cfg.DockerHubURL, repo))
	}
	if cfg.GitHubRepository != "" {
		ghClient := upstream.NewClient(cfg.HTTPTimeout).WithToken(cfg.GitHubToken)
		sources = append(sources, upstream.NewGitHubSource(ghClient, cfg.GitHubURL, cfg.GitHubRepository))
	}
	return sources
}

// ExecuteIngest records the snapshot for the configured snapshot date and prints the report.
// It serves as the main entry point for the 'ingest' command.
func ExecuteIngest(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	recorder := metrics.NewRecorder()
	ing := &Ingester{
		Snapshots: mgr.GetSnapshotStore(),
		Runs:      mgr.GetRunStore(),
		Notifier:  notify.FromConfig(cfg),
		Recorder:  recorder,
		Workers:   cfg.Workers,
	}

	report, runErr := ing.Run(ctx, BuildSources(cfg), cfg.SnapshotDate())
	if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("failed to write metrics")
	}
	if len(report.Results) > 0 {
		if err := outwriter.NewOutWriter().WriteIngestReport(report, cfg, time.Since(start)); err != nil {
			return err
		}
	}
	return runErr
}

// ExecuteDashboard renders the dashboard for the configured window and prints it.
// It serves as the main entry point for the 'dashboard' command.
func ExecuteDashboard(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	d, err := BuildDashboard(ctx, cfg, mgr.GetSnapshotStore(), BuildSources(cfg), IsLiveDay(cfg, start))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDashboard(d, cfg, time.Since(start))
}

// ExecuteSeries renders a single metric and prints it.
// It serves as the main entry point for the 'series' command.
func ExecuteSeries(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, metricID string) error {
	rs, err := BuildSeries(ctx, cfg, mgr.GetSnapshotStore(), BuildSources(cfg), metricID, IsLiveDay(cfg, time.Now()))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSeries(rs, cfg)
}

// ExecuteRuns prints the most recent ingestion runs.
func ExecuteRuns(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	runStore := mgr.GetRunStore()
	if runStore == nil {
		return fmt.Errorf("run store is not initialized")
	}
	runs, err := runStore.ListRuns(ctx, cfg.RunLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return outwriter.NewOutWriter().WriteRuns(runs, cfg)
}
