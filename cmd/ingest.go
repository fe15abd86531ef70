package cmd

import (
	"github.com/huangsam/hubstats/core"
	"github.com/spf13/cobra"
)

// ingestCmd records one snapshot per tracked metric.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Record today's snapshot of every tracked counter.",
	Long: `Fetch the current pull and star counters and store them as the snapshot of one day.

The snapshot is dated --as-of minus --ingest-lag days (yesterday by default), so a daily
cron job records the closing total of the previous day. Each snapshot stores the cumulative
total and the difference to the previous stored day.

A metric whose upstream cannot be reached is skipped and reported; the other metrics are
still recorded. Rerunning for the same day replaces that day's snapshot.

When both a Telegram bot token and chat id are configured, a message is sent for every
stored snapshot. Set HUBSTATS_TELEGRAM_BOT_TOKEN (or TELEGRAM_BOT_TOKEN) in the environment.

Examples:
  # Record yesterday's totals
  hubstats ingest

  # Backfill a specific day with the current totals
  hubstats ingest --as-of 2024-05-20 --ingest-lag 0

  # Record and export Prometheus metrics for node_exporter
  hubstats ingest --metrics-file /var/lib/node_exporter/hubstats.prom`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteIngest(rootCtx, cfg, storeManager)
	},
}
