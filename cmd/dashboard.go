package cmd

import (
	"github.com/huangsam/hubstats/core"
	"github.com/spf13/cobra"
)

// dashboardCmd renders every tracked metric.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show pulls and stars for every tracked repository.",
	Long: `Render the trailing --window days of every tracked metric from stored snapshots.

When --as-of is today, each counter is also fetched live and overrides today's value.
If a live fetch fails, that metric is rendered from stored history and flagged.

Days without a snapshot repeat the previous total with a zero daily change.

Examples:
  # Last 30 days in the terminal
  hubstats dashboard

  # A quarter as an HTML chart page
  hubstats dashboard --window 90 --output html --output-file hubstats.html

  # Machine-readable output
  hubstats dashboard --output json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteDashboard(rootCtx, cfg, storeManager)
	},
}

// seriesCmd renders one metric as a day table.
var seriesCmd = &cobra.Command{
	Use:   "series <metric>",
	Short: "Show the daily totals of a single metric.",
	Long: `Render one metric, identified as pulls:<namespace>/<name> or stars:<owner>/<repo>.

Examples:
  hubstats series pulls:jhumanj/opnform-api
  hubstats series stars:opnform/opnform --window 7 --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return core.ExecuteSeries(rootCtx, cfg, storeManager, args[0])
	},
}
