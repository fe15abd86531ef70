package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/parquet"
	"github.com/huangsam/hubstats/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintDashboard outputs the dashboard, dispatching based on the output format configured.
func PrintDashboard(d schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, d)
		}, "Wrote JSON dashboard"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesCSV(w, d.Series)
		}, "Wrote CSV dashboard"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDashboardHTML(w, d)
		}, "Wrote HTML dashboard"); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteSnapshots(w, renderedRecords(d.Series))
		}, "Wrote Parquet dashboard"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeDashboardText(os.Stdout, d, cfg); err != nil {
			return fmt.Errorf("error writing dashboard table output: %w", err)
		}
		_, _ = fmt.Printf("Dashboard rendered in %v for %d metrics. Store backend: %s\n", duration, d.Stats.TrackedMetrics, cfg.StoreBackend)
	}
	return nil
}

// renderedRecords flattens rendered windows into (metric, day, accumulated, unique) rows.
func renderedRecords(series []schema.RenderedSeries) []parquet.SnapshotRecord {
	var records []parquet.SnapshotRecord
	for _, rs := range series {
		for _, d := range rs.Days() {
			key := schema.DayKey(d)
			records = append(records, parquet.SnapshotRecord{
				Metric:          rs.Metric,
				Date:            d,
				CumulativeTotal: rs.Accumulated[key],
				DailyDelta:      rs.Unique[key],
			})
		}
	}
	return records
}

// writeSeriesCSV writes one row per metric and window day.
func writeSeriesCSV(w io.Writer, series []schema.RenderedSeries) error {
	header := []string{"metric", "day", "accumulated", "unique", "live"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, rs := range series {
			live := strconv.FormatBool(rs.Live)
			for _, d := range rs.Days() {
				key := schema.DayKey(d)
				row := []string{
					rs.Metric,
					key,
					strconv.FormatInt(rs.Accumulated[key], 10),
					strconv.FormatInt(rs.Unique[key], 10),
					live,
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeDashboardText prints the headline stats, the repository cards and the per-day totals.
func writeDashboardText(w io.Writer, d schema.Dashboard, cfg *contract.Config) error {
	s := d.Stats
	_, _ = fmt.Fprintf(w, "📦 Total pulls: %s  Today: %s  Average/day: %s\n",
		contract.FormatCount(s.TotalPulls), formatDelta(s.PullsToday, cfg.UseColors), contract.FormatCount(s.AveragePullsDay))
	_, _ = fmt.Fprintf(w, "⭐ Total stars: %s  Today: %s\n",
		contract.FormatCount(s.TotalStars), formatDelta(s.StarsToday, cfg.UseColors))
	_, _ = fmt.Fprintf(w, "📅 As of %s (%d days, %d snapshots in store)\n", schema.DayKey(d.AsOf), s.WindowDays, s.SnapshotsInStore)

	if err := writeCardsTable(w, d, cfg); err != nil {
		return err
	}
	if err := writeDailyTable(w, d, cfg); err != nil {
		return err
	}

	if len(d.Degraded) > 0 {
		metrics := make([]string, 0, len(d.Degraded))
		for m := range d.Degraded {
			metrics = append(metrics, m)
		}
		sort.Strings(metrics)
		for _, m := range metrics {
			_, _ = fmt.Fprintf(w, "⚠️  %s rendered from history only: %s\n", m, d.Degraded[m])
		}
	}
	return nil
}

// writeCardsTable prints one row per tracked repository.
func writeCardsTable(w io.Writer, d schema.Dashboard, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repository", "User", "Kind", "Total", "Today", "Last Updated"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	today := make(map[string]int64, len(d.Series))
	for _, rs := range d.Series {
		today[rs.Metric] = rs.Unique[schema.DayKey(d.AsOf)]
	}

	maxWidth := GetMaxTableLabelWidth(cfg)
	var data [][]string
	for _, card := range d.Cards {
		user, updated := "-", "-"
		if card.Info != nil {
			if card.Info.User != "" {
				user = card.Info.User
			}
			updated = formatTime(card.Info.LastUpdated, time.DateOnly)
		}
		data = append(data, []string{
			contract.TruncateText(card.Metric.Repository, maxWidth),
			user,
			string(card.Metric.Kind),
			contract.FormatCount(card.Total),
			formatDelta(today[card.Metric.ID], cfg.UseColors),
			updated,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeDailyTable prints per-day sums across pulls metrics and across stars metrics.
func writeDailyTable(w io.Writer, d schema.Dashboard, cfg *contract.Config) error {
	if len(d.Series) == 0 {
		return nil
	}

	type daySums struct{ pulls, pullsDelta, stars, starsDelta int64 }
	days := d.Series[0].Days()
	sums := make([]daySums, len(days))
	for _, rs := range d.Series {
		m, err := schema.ParseMetricID(rs.Metric)
		if err != nil {
			continue
		}
		for i, day := range days {
			key := schema.DayKey(day)
			switch m.Kind {
			case schema.PullsKind:
				sums[i].pulls += rs.Accumulated[key]
				sums[i].pullsDelta += rs.Unique[key]
			case schema.StarsKind:
				sums[i].stars += rs.Accumulated[key]
				sums[i].starsDelta += rs.Unique[key]
			}
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "Pulls", "Pulls Δ", "Stars", "Stars Δ"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(days))
	for i, day := range days {
		data = append(data, []string{
			schema.DayKey(day),
			contract.FormatCount(sums[i].pulls),
			formatDelta(sums[i].pullsDelta, cfg.UseColors),
			contract.FormatCount(sums[i].stars),
			formatDelta(sums[i].starsDelta, cfg.UseColors),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
